// Package wire defines the messages nodes, wallets and miners exchange and
// how they are encoded and framed on a byte stream.
package wire

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/rlp"
)

// Kind is the tag that identifies the variant of a message on the wire.
type Kind uint8

// The set of message kinds. Zero is never a valid kind.
const (
	KindFetchUTXOs Kind = iota + 1
	KindUTXOs
	KindSubmitTransaction
	KindNewTransaction
	KindFetchTemplate
	KindTemplate
	KindValidateTemplate
	KindTemplateValidity
	KindSubmitTemplate
	KindDiscoverNodes
	KindNodeList
	KindAskDifference
	KindDifference
	KindFetchBlock
	KindNewBlock
)

// String returns the name of the message kind.
func (k Kind) String() string {
	switch k {
	case KindFetchUTXOs:
		return "FetchUTXOs"
	case KindUTXOs:
		return "UTXOs"
	case KindSubmitTransaction:
		return "SubmitTransaction"
	case KindNewTransaction:
		return "NewTransaction"
	case KindFetchTemplate:
		return "FetchTemplate"
	case KindTemplate:
		return "Template"
	case KindValidateTemplate:
		return "ValidateTemplate"
	case KindTemplateValidity:
		return "TemplateValidity"
	case KindSubmitTemplate:
		return "SubmitTemplate"
	case KindDiscoverNodes:
		return "DiscoverNodes"
	case KindNodeList:
		return "NodeList"
	case KindAskDifference:
		return "AskDifference"
	case KindDifference:
		return "Difference"
	case KindFetchBlock:
		return "FetchBlock"
	case KindNewBlock:
		return "NewBlock"
	}

	return fmt.Sprintf("Unknown(%d)", uint8(k))
}

// Message is implemented by every variant of the protocol. The set of
// variants is closed to this package.
type Message interface {
	Kind() Kind
	message()
}

// makeEmptyMessage returns a zero value of the variant identified by the
// kind, ready to be decoded into.
func makeEmptyMessage(kind Kind) (Message, error) {
	var msg Message

	switch kind {
	case KindFetchUTXOs:
		msg = &FetchUTXOs{}
	case KindUTXOs:
		msg = &UTXOs{}
	case KindSubmitTransaction:
		msg = &SubmitTransaction{}
	case KindNewTransaction:
		msg = &NewTransaction{}
	case KindFetchTemplate:
		msg = &FetchTemplate{}
	case KindTemplate:
		msg = &Template{}
	case KindValidateTemplate:
		msg = &ValidateTemplate{}
	case KindTemplateValidity:
		msg = &TemplateValidity{}
	case KindSubmitTemplate:
		msg = &SubmitTemplate{}
	case KindDiscoverNodes:
		msg = &DiscoverNodes{}
	case KindNodeList:
		msg = &NodeList{}
	case KindAskDifference:
		msg = &AskDifference{}
	case KindDifference:
		msg = &Difference{}
	case KindFetchBlock:
		msg = &FetchBlock{}
	case KindNewBlock:
		msg = &NewBlock{}
	default:
		return nil, fmt.Errorf("%w: unknown message kind %d", ErrDecode, uint8(kind))
	}

	return msg, nil
}

// =============================================================================

// FetchUTXOs asks a node for the unspent outputs owned by a key.
type FetchUTXOs struct {
	PubKey signature.PublicKey
}

// UTXO is an unspent output and whether a pending transaction already
// spends it.
type UTXO struct {
	Output database.TxOutput
	Marked bool
}

// UTXOs answers FetchUTXOs.
type UTXOs struct {
	Outputs []UTXO
}

// SubmitTransaction hands a transaction from a wallet to a node.
type SubmitTransaction struct {
	Tx database.Tx
}

// NewTransaction relays a transaction between nodes.
type NewTransaction struct {
	Tx database.Tx
}

// FetchTemplate asks a node for a block template paying to a key.
type FetchTemplate struct {
	PubKey signature.PublicKey
}

// Template answers FetchTemplate with an unmined block.
type Template struct {
	Block database.Block
}

// ValidateTemplate asks whether a template is still valid to mine.
type ValidateTemplate struct {
	Block database.Block
}

// TemplateValidity answers ValidateTemplate.
type TemplateValidity struct {
	Valid bool
}

// SubmitTemplate hands a mined block from a miner to a node.
type SubmitTemplate struct {
	Block database.Block
}

// DiscoverNodes asks a node for the nodes it knows about.
type DiscoverNodes struct{}

// NodeList answers DiscoverNodes.
type NodeList struct {
	Nodes []string `validate:"dive,hostname_port"`
}

// AskDifference asks how far ahead of the specified height a node is.
type AskDifference struct {
	Height uint32
}

// Difference answers AskDifference. A negative delta means the asking node
// is ahead.
type Difference struct {
	Delta int32
}

// FetchBlock asks a node for the block at the specified index.
type FetchBlock struct {
	Index uint64
}

// NewBlock carries a block between nodes.
type NewBlock struct {
	Block database.Block
}

// =============================================================================

func (*FetchUTXOs) Kind() Kind        { return KindFetchUTXOs }
func (*UTXOs) Kind() Kind             { return KindUTXOs }
func (*SubmitTransaction) Kind() Kind { return KindSubmitTransaction }
func (*NewTransaction) Kind() Kind    { return KindNewTransaction }
func (*FetchTemplate) Kind() Kind     { return KindFetchTemplate }
func (*Template) Kind() Kind          { return KindTemplate }
func (*ValidateTemplate) Kind() Kind  { return KindValidateTemplate }
func (*TemplateValidity) Kind() Kind  { return KindTemplateValidity }
func (*SubmitTemplate) Kind() Kind    { return KindSubmitTemplate }
func (*DiscoverNodes) Kind() Kind     { return KindDiscoverNodes }
func (*NodeList) Kind() Kind          { return KindNodeList }
func (*AskDifference) Kind() Kind     { return KindAskDifference }
func (*Difference) Kind() Kind        { return KindDifference }
func (*FetchBlock) Kind() Kind        { return KindFetchBlock }
func (*NewBlock) Kind() Kind          { return KindNewBlock }

func (*FetchUTXOs) message()        {}
func (*UTXOs) message()             {}
func (*SubmitTransaction) message() {}
func (*NewTransaction) message()    {}
func (*FetchTemplate) message()     {}
func (*Template) message()          {}
func (*ValidateTemplate) message()  {}
func (*TemplateValidity) message()  {}
func (*SubmitTemplate) message()    {}
func (*DiscoverNodes) message()     {}
func (*NodeList) message()          {}
func (*AskDifference) message()     {}
func (*Difference) message()        {}
func (*FetchBlock) message()        {}
func (*NewBlock) message()          {}

// =============================================================================

// signedRLP is the encoding of a signed delta. RLP only carries unsigned
// integers so the sign travels separately from the magnitude.
type signedRLP struct {
	Negative  bool
	Magnitude uint32
}

// EncodeRLP implements the rlp.Encoder interface.
func (d Difference) EncodeRLP(w io.Writer) error {
	v := signedRLP{
		Negative:  d.Delta < 0,
		Magnitude: uint32(d.Delta),
	}
	if v.Negative {
		v.Magnitude = uint32(-int64(d.Delta))
	}

	return rlp.Encode(w, v)
}

// DecodeRLP implements the rlp.Decoder interface. Negative zero and
// magnitudes outside the int32 range are rejected so every delta has
// exactly one encoding.
func (d *Difference) DecodeRLP(s *rlp.Stream) error {
	var v signedRLP
	if err := s.Decode(&v); err != nil {
		return err
	}

	switch {
	case !v.Negative && v.Magnitude > math.MaxInt32:
		return errors.New("difference: magnitude overflows int32")
	case v.Negative && v.Magnitude == 0:
		return errors.New("difference: negative zero")
	case v.Negative && v.Magnitude > -math.MinInt32:
		return errors.New("difference: magnitude overflows int32")
	}

	d.Delta = int32(v.Magnitude)
	if v.Negative {
		d.Delta = int32(-int64(v.Magnitude))
	}

	return nil
}
