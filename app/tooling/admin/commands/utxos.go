package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/blockchain/wire"
)

// UTXOs answers a FetchUTXOs request for the owner and writes the outputs.
// When an output path is specified the framed response is also written
// there for the wallet to build a transaction from.
func UTXOs(w io.Writer, owner string, outPath string, st *state.State) error {
	if owner == "" {
		return errors.New("public key required")
	}

	pub, err := signature.PublicKeyFromHex(owner)
	if err != nil {
		return err
	}

	resp, err := st.Handle(&wire.FetchUTXOs{PubKey: pub})
	if err != nil {
		return err
	}

	utxos, ok := resp.(*wire.UTXOs)
	if !ok {
		return fmt.Errorf("expected %s response, got %s", wire.KindUTXOs, resp.Kind())
	}

	for _, utxo := range utxos.Outputs {
		fmt.Fprintf(w, "Output: %s  Value: %d  Marked: %t\n", utxo.Output.Hash(), utxo.Output.Value, utxo.Marked)
	}

	if outPath == "" {
		return nil
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return wire.Send(f, utxos)
}
