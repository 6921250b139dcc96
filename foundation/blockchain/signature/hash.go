// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// Set of error kinds for the cryptographic primitives.
var (
	ErrInvalidHash       = errors.New("invalid hash")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrInvalidPrivateKey = errors.New("invalid private key")
)

// HashLength is the number of bytes in a hash.
const HashLength = 32

// Hash represents the 256 bit digest identifying any value on the chain.
type Hash [HashLength]byte

// ZeroHash represents a hash code of zeros. It marks the predecessor of the
// genesis block and is never produced by hashing a value.
var ZeroHash Hash

// =============================================================================

// HashOf returns a unique hash for the value. The value is RLP encoded so the
// result only depends on the field values and their declared order, which is
// the same encoding used to move the value between nodes. HashOf panics if
// the value's type can't be RLP encoded.
func HashOf(value any) Hash {
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		panic(fmt.Sprintf("signature: HashOf: %T is not hashable: %s", value, err))
	}

	return sha256.Sum256(data)
}

// HashPair returns the digest of the two hashes concatenated in order.
func HashPair(left Hash, right Hash) Hash {
	var data [2 * HashLength]byte
	copy(data[:HashLength], left[:])
	copy(data[HashLength:], right[:])

	return sha256.Sum256(data[:])
}

// HashFromHex converts a 0x prefixed hex string into a hash.
func HashFromHex(s string) (Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return ZeroHash, fmt.Errorf("%w: %s", ErrInvalidHash, err)
	}

	if len(b) != HashLength {
		return ZeroHash, fmt.Errorf("%w: got %d bytes, exp %d", ErrInvalidHash, len(b), HashLength)
	}

	var h Hash
	copy(h[:], b)

	return h, nil
}

// =============================================================================

// IsZero reports whether the hash is the zero sentinel.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Int returns the hash interpreted as a big endian 256 bit unsigned integer.
func (h Hash) Int() *uint256.Int {
	return new(uint256.Int).SetBytes32(h[:])
}

// MatchesTarget reports whether the hash, as an unsigned integer, is less
// than or equal to the target.
func (h Hash) MatchesTarget(target *uint256.Int) bool {
	return h.Int().Cmp(target) <= 0
}

// Cmp compares two hashes as unsigned integers and returns -1, 0 or +1.
func (h Hash) Cmp(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// String implements the fmt.Stringer interface.
func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (h *Hash) UnmarshalText(data []byte) error {
	v, err := HashFromHex(string(data))
	if err != nil {
		return err
	}

	*h = v
	return nil
}
