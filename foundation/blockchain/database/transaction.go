package database

import (
	"fmt"
	"math/bits"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// TxOutput represents value locked to the owner of a public key. The unique
// id keeps two outputs with the same value and owner from sharing a hash.
type TxOutput struct {
	Value    uint64              `json:"value"`     // Bitcoin: Amount of coins locked in the output.
	UniqueID uuid.UUID           `json:"unique_id"` // Random 128 bit tag making the output hash unique.
	PubKey   signature.PublicKey `json:"pubkey"`    // Bitcoin: The key that must sign to spend this output.
}

// NewTxOutput constructs a new output locked to the specified owner.
func NewTxOutput(value uint64, owner signature.PublicKey) TxOutput {
	return TxOutput{
		Value:    value,
		UniqueID: uuid.New(),
		PubKey:   owner,
	}
}

// Hash returns the unique hash for the output. This is the key the output
// is stored under in the UTXO set and the digest an input signs to spend it.
func (out TxOutput) Hash() signature.Hash {
	return signature.HashOf(out)
}

// String implements the fmt.Stringer interface for logging.
func (out TxOutput) String() string {
	return fmt.Sprintf("%s:%d", out.PubKey, out.Value)
}

// =============================================================================

// TxInput references an unspent output by its hash and carries the
// signature that authorizes spending it.
type TxInput struct {
	PrevOutputHash signature.Hash      `json:"prev_output_hash"` // Bitcoin: Reference to the output being spent.
	Signature      signature.Signature `json:"signature"`        // Bitcoin: Signature over the referenced output's hash.
}

// NewTxInput constructs an input spending the specified output. The private
// key must belong to the owner of the output.
func NewTxInput(prev TxOutput, privateKey signature.PrivateKey) (TxInput, error) {
	if privateKey.PublicKey() != prev.PubKey {
		return TxInput{}, fmt.Errorf("%w: key does not own output %s", ErrInvalidPrivateKey, prev.Hash())
	}

	hash := prev.Hash()

	sig, err := signature.Sign(hash, privateKey)
	if err != nil {
		return TxInput{}, err
	}

	in := TxInput{
		PrevOutputHash: hash,
		Signature:      sig,
	}

	return in, nil
}

// =============================================================================

// Tx is the transfer of value from a set of unspent outputs to a set of
// new outputs.
type Tx struct {
	Inputs  []TxInput  `json:"inputs"`
	Outputs []TxOutput `json:"outputs"`
}

// NewTx constructs a new transaction.
func NewTx(inputs []TxInput, outputs []TxOutput) Tx {
	return Tx{
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// Hash implements the merkle Hashable interface for providing a hash
// of a transaction. It commits to the inputs and outputs in order.
func (tx Tx) Hash() signature.Hash {
	return signature.HashOf(tx)
}

// OutputValue returns the total value produced by the transaction.
func (tx Tx) OutputValue() (uint64, error) {
	var total uint64
	for i, out := range tx.Outputs {
		sum, carry := bits.Add64(total, out.Value, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%w: output[%d] overflows the total value", ErrInvalidTransactionOutput, i)
		}
		total = sum
	}

	return total, nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:in[%d]:out[%d]", tx.Hash(), len(tx.Inputs), len(tx.Outputs))
}
