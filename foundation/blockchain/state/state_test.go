package state_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/blockchain/wire"
	"github.com/ardanlabs/utxochain/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	k1Hex    = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	minerHex = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

func ifErrFailNow(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func mustKey(t *testing.T, hex string) signature.PrivateKey {
	t.Helper()

	pk, err := signature.PrivateKeyFromHex(hex)
	ifErrFailNow(t, err)
	return pk
}

func newState(t *testing.T, owner signature.PublicKey) *state.State {
	t.Helper()

	log, err := logger.New("TEST")
	ifErrFailNow(t, err)
	t.Cleanup(func() { log.Sync() })

	ev := logger.EventHandler(log, "00000000-0000-0000-0000-000000000000")

	gen := genesis.Genesis{
		Date:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TransPerBlock: 10,
		Difficulty:    1,
		Allocations: []genesis.Allocation{
			{PublicKey: owner, Value: 100},
		},
	}

	clock := gen.Date.Add(time.Minute)

	st, err := state.New(state.Config{
		Host:       "localhost:9080",
		Genesis:    gen,
		KnownPeers: peer.NewPeerSet(),
		EvHandler:  state.EventHandler(ev),
		Now:        func() time.Time { return clock },
	})
	ifErrFailNow(t, err)

	return st
}

// roundTrip sends the message through the wire codec before handling it
// and sends the response back the same way.
func roundTrip(t *testing.T, st *state.State, msg wire.Message) (wire.Message, error) {
	t.Helper()

	var buf bytes.Buffer
	ifErrFailNow(t, wire.Send(&buf, msg))

	req, err := wire.Receive(&buf)
	ifErrFailNow(t, err)

	resp, err := st.Handle(req)
	if err != nil || resp == nil {
		return resp, err
	}

	ifErrFailNow(t, wire.Send(&buf, resp))
	return wire.Receive(&buf)
}

func mine(b *database.Block) {
	for !b.Hash().MatchesTarget(&b.Header.Target) {
		b.Header.Nonce++
	}
}

// =============================================================================

func Test_MineAndSubmitBlock(t *testing.T) {
	k1 := mustKey(t, k1Hex)
	miner := mustKey(t, minerHex)

	st := newState(t, k1.PublicKey())

	t.Log("Given the need to move value through a node.")
	{
		var utxo database.TxOutput

		t.Logf("\tTest 0:\tWhen the wallet fetches its outputs.")
		{
			resp, err := roundTrip(t, st, &wire.FetchUTXOs{PubKey: k1.PublicKey()})
			ifErrFailNow(t, err)

			utxos, ok := resp.(*wire.UTXOs)
			if !ok || len(utxos.Outputs) != 1 || utxos.Outputs[0].Output.Value != 100 || utxos.Outputs[0].Marked {
				t.Fatalf("\t%s\tTest 0:\tShould get the genesis allocation, got %v", failed, resp)
			}
			t.Logf("\t%s\tTest 0:\tShould get the genesis allocation.", success)

			utxo = utxos.Outputs[0].Output
		}

		t.Logf("\tTest 1:\tWhen the wallet submits a transaction.")
		{
			in, err := database.NewTxInput(utxo, k1)
			ifErrFailNow(t, err)

			tx := database.NewTx([]database.TxInput{in}, []database.TxOutput{
				database.NewTxOutput(60, miner.PublicKey()),
				database.NewTxOutput(35, k1.PublicKey()),
			})

			resp, err := roundTrip(t, st, &wire.SubmitTransaction{Tx: tx})
			if err != nil || resp != nil {
				t.Fatalf("\t%s\tTest 1:\tShould accept the transaction without a response: %v %v", failed, resp, err)
			}
			t.Logf("\t%s\tTest 1:\tShould accept the transaction without a response.", success)

			if st.QueryMempoolLength() != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould hold the transaction in the mempool.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould hold the transaction in the mempool.", success)

			if utxos := st.QueryUTXOs(k1.PublicKey()); len(utxos) != 1 || !utxos[0].Marked {
				t.Fatalf("\t%s\tTest 1:\tShould mark the spent output.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould mark the spent output.", success)
		}

		var template database.Block

		t.Logf("\tTest 2:\tWhen the miner fetches a template.")
		{
			resp, err := roundTrip(t, st, &wire.FetchTemplate{PubKey: miner.PublicKey()})
			ifErrFailNow(t, err)

			tmpl, ok := resp.(*wire.Template)
			if !ok || len(tmpl.Block.Trans) != 1 {
				t.Fatalf("\t%s\tTest 2:\tShould get a template carrying the transaction, got %v", failed, resp)
			}
			t.Logf("\t%s\tTest 2:\tShould get a template carrying the transaction.", success)

			template = tmpl.Block

			genesisBlock := st.RetrieveLatestBlock()
			if template.Header.PrevBlockHash != genesisBlock.Hash() {
				t.Fatalf("\t%s\tTest 2:\tShould link the template to the latest block.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould link the template to the latest block.", success)

			if template.Header.TimeStamp != genesisBlock.Header.TimeStamp+60 {
				t.Fatalf("\t%s\tTest 2:\tShould stamp the template with the clock, got %d", failed, template.Header.TimeStamp)
			}
			t.Logf("\t%s\tTest 2:\tShould stamp the template with the clock.", success)
		}

		t.Logf("\tTest 3:\tWhen the miner validates the template.")
		{
			resp, err := roundTrip(t, st, &wire.ValidateTemplate{Block: template})
			ifErrFailNow(t, err)

			if v, ok := resp.(*wire.TemplateValidity); !ok || !v.Valid {
				t.Fatalf("\t%s\tTest 3:\tShould report the template as valid, got %v", failed, resp)
			}
			t.Logf("\t%s\tTest 3:\tShould report the template as valid.", success)

			stale := template
			stale.Header.PrevBlockHash = signature.ZeroHash

			resp, err = roundTrip(t, st, &wire.ValidateTemplate{Block: stale})
			ifErrFailNow(t, err)

			if v, ok := resp.(*wire.TemplateValidity); !ok || v.Valid {
				t.Fatalf("\t%s\tTest 3:\tShould report a stale template as invalid, got %v", failed, resp)
			}
			t.Logf("\t%s\tTest 3:\tShould report a stale template as invalid.", success)
		}

		t.Logf("\tTest 4:\tWhen the miner submits the solved template.")
		{
			mine(&template)

			resp, err := roundTrip(t, st, &wire.SubmitTemplate{Block: template})
			if err != nil || resp != nil {
				t.Fatalf("\t%s\tTest 4:\tShould accept the block without a response: %v %v", failed, resp, err)
			}
			t.Logf("\t%s\tTest 4:\tShould accept the block without a response.", success)

			if st.RetrieveHeight() != 2 || st.QueryMempoolLength() != 0 {
				t.Fatalf("\t%s\tTest 4:\tShould extend the chain and drain the mempool.", failed)
			}
			t.Logf("\t%s\tTest 4:\tShould extend the chain and drain the mempool.", success)

			if st.QueryBalance(miner.PublicKey()) != 60 || st.QueryBalance(k1.PublicKey()) != 35 {
				t.Fatalf("\t%s\tTest 4:\tShould move the balances.", failed)
			}
			t.Logf("\t%s\tTest 4:\tShould move the balances.", success)

			_, err = roundTrip(t, st, &wire.NewBlock{Block: template})
			if !errors.Is(err, database.ErrInvalidBlock) {
				t.Fatalf("\t%s\tTest 4:\tShould reject the same block twice, got %v", failed, err)
			}
			t.Logf("\t%s\tTest 4:\tShould reject the same block twice.", success)
		}
	}
}

func Test_Sync(t *testing.T) {
	k1 := mustKey(t, k1Hex)
	st := newState(t, k1.PublicKey())

	t.Log("Given the need to answer sync requests.")
	{
		t.Logf("\tTest 0:\tWhen asked for the height difference.")
		{
			resp, err := roundTrip(t, st, &wire.AskDifference{Height: 0})
			ifErrFailNow(t, err)

			if d, ok := resp.(*wire.Difference); !ok || d.Delta != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould be one block ahead, got %v", failed, resp)
			}
			t.Logf("\t%s\tTest 0:\tShould be one block ahead.", success)

			resp, err = roundTrip(t, st, &wire.AskDifference{Height: 5})
			ifErrFailNow(t, err)

			if d, ok := resp.(*wire.Difference); !ok || d.Delta != -4 {
				t.Fatalf("\t%s\tTest 0:\tShould be four blocks behind, got %v", failed, resp)
			}
			t.Logf("\t%s\tTest 0:\tShould be four blocks behind.", success)
		}

		t.Logf("\tTest 1:\tWhen asked for a block.")
		{
			resp, err := roundTrip(t, st, &wire.FetchBlock{Index: 0})
			ifErrFailNow(t, err)

			if b, ok := resp.(*wire.NewBlock); !ok || b.Block.Hash() != st.RetrieveGenesis().Block().Hash() {
				t.Fatalf("\t%s\tTest 1:\tShould get the genesis block, got %v", failed, resp)
			}
			t.Logf("\t%s\tTest 1:\tShould get the genesis block.", success)

			if _, err := roundTrip(t, st, &wire.FetchBlock{Index: 9}); !errors.Is(err, database.ErrNotFound) {
				t.Fatalf("\t%s\tTest 1:\tShould not find block 9, got %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould not find block 9.", success)
		}

		t.Logf("\tTest 2:\tWhen exchanging node lists.")
		{
			_, err := roundTrip(t, st, &wire.NodeList{Nodes: []string{"localhost:9080", "node1.example.com:9080"}})
			ifErrFailNow(t, err)

			resp, err := roundTrip(t, st, &wire.DiscoverNodes{})
			ifErrFailNow(t, err)

			nodes, ok := resp.(*wire.NodeList)
			if !ok || len(nodes.Nodes) != 1 || nodes.Nodes[0] != "node1.example.com:9080" {
				t.Fatalf("\t%s\tTest 2:\tShould list the other known node, got %v", failed, resp)
			}
			t.Logf("\t%s\tTest 2:\tShould list the other known node.", success)
		}

		t.Logf("\tTest 3:\tWhen handed a response message.")
		{
			if _, err := st.Handle(&wire.TemplateValidity{Valid: true}); !errors.Is(err, state.ErrUnexpectedMessage) {
				t.Fatalf("\t%s\tTest 3:\tShould reject the message, got %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould reject the message.", success)
		}
	}
}

func Test_BadTransaction(t *testing.T) {
	k1 := mustKey(t, k1Hex)
	miner := mustKey(t, minerHex)
	st := newState(t, k1.PublicKey())

	t.Log("Given the need to keep invalid transactions out of the mempool.")
	{
		t.Logf("\tTest 0:\tWhen the input is signed by the wrong key.")
		{
			utxo := st.QueryUTXOs(k1.PublicKey())[0].Output

			sig, err := signature.Sign(utxo.Hash(), miner)
			ifErrFailNow(t, err)

			tx := database.NewTx(
				[]database.TxInput{{PrevOutputHash: utxo.Hash(), Signature: sig}},
				[]database.TxOutput{database.NewTxOutput(100, miner.PublicKey())},
			)

			_, err = st.Handle(&wire.NewTransaction{Tx: tx})
			if !errors.Is(err, database.ErrInvalidSignature) {
				t.Fatalf("\t%s\tTest 0:\tShould reject the transaction, got %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the transaction.", success)

			if st.QueryMempoolLength() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould leave the mempool empty.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the mempool empty.", success)
		}
	}
}
