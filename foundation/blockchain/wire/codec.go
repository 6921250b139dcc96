package wire

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/validate"
	"github.com/ethereum/go-ethereum/rlp"
)

// ErrDecode is returned when bytes received from a peer do not decode to a
// valid message.
var ErrDecode = errors.New("wire: undecodable message")

// envelope is the encoding of every message: the kind tag followed by the
// RLP encoding of the variant.
type envelope struct {
	Kind    uint8
	Payload rlp.RawValue
}

// Encode returns the canonical encoding of the message.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, errors.New("wire: encode nil message")
	}

	payload, err := rlp.EncodeToBytes(msg)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %s: %w", msg.Kind(), err)
	}

	env := envelope{
		Kind:    uint8(msg.Kind()),
		Payload: payload,
	}

	data, err := rlp.EncodeToBytes(env)
	if err != nil {
		return nil, fmt.Errorf("wire: encode envelope %s: %w", msg.Kind(), err)
	}

	return data, nil
}

// Decode parses the encoding of a message. Trailing bytes, unknown kinds,
// malformed payloads and payloads failing validation are all reported as
// ErrDecode.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := rlp.DecodeBytes(data, &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %w", ErrDecode, err)
	}

	msg, err := makeEmptyMessage(Kind(env.Kind))
	if err != nil {
		return nil, err
	}

	if err := rlp.DecodeBytes(env.Payload, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, msg.Kind(), err)
	}

	if err := validate.Check(msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, msg.Kind(), err)
	}

	return msg, nil
}
