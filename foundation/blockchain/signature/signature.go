package signature

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Sizes of the serialized key material.
const (
	PublicKeyLength = 33
	SignatureLength = 64
)

// PublicKey is a compressed secp256k1 public key. It is the anchor recorded
// in a transaction output that authorizes spending it.
type PublicKey [PublicKeyLength]byte

// Signature is a secp256k1 signature in the [R|S] format.
type Signature [SignatureLength]byte

// PrivateKey wraps the secp256k1 private key held by the owner of outputs.
// It is never serialized into the blockchain.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// =============================================================================

// GenerateKey produces a new random private key.
func GenerateKey() (PrivateKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: %s", ErrInvalidPrivateKey, err)
	}

	return PrivateKey{key: key}, nil
}

// PrivateKeyFromHex constructs a private key from its hex representation.
func PrivateKeyFromHex(s string) (PrivateKey, error) {
	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: %s", ErrInvalidPrivateKey, err)
	}

	return PrivateKey{key: key}, nil
}

// LoadPrivateKey reads a hex encoded private key from the specified file.
func LoadPrivateKey(path string) (PrivateKey, error) {
	key, err := crypto.LoadECDSA(path)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: %s", ErrInvalidPrivateKey, err)
	}

	return PrivateKey{key: key}, nil
}

// SavePrivateKey writes the private key hex encoded to the specified file
// with restrictive permissions.
func SavePrivateKey(path string, pk PrivateKey) error {
	if pk.key == nil {
		return ErrInvalidPrivateKey
	}

	return crypto.SaveECDSA(path, pk.key)
}

// PublicKey returns the compressed public key for this private key.
func (pk PrivateKey) PublicKey() PublicKey {
	var pub PublicKey
	if pk.key == nil {
		return pub
	}

	copy(pub[:], crypto.CompressPubkey(&pk.key.PublicKey))
	return pub
}

// =============================================================================

// PublicKeyFromBytes validates the bytes hold a point on the curve and
// returns the compressed public key.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != PublicKeyLength {
		return PublicKey{}, fmt.Errorf("%w: got %d bytes, exp %d", ErrInvalidPublicKey, len(b), PublicKeyLength)
	}

	if _, err := crypto.DecompressPubkey(b); err != nil {
		return PublicKey{}, fmt.Errorf("%w: %s", ErrInvalidPublicKey, err)
	}

	var pub PublicKey
	copy(pub[:], b)

	return pub, nil
}

// PublicKeyFromHex converts a 0x prefixed hex string into a public key.
func PublicKeyFromHex(s string) (PublicKey, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %s", ErrInvalidPublicKey, err)
	}

	return PublicKeyFromBytes(b)
}

// IsValid reports whether the key holds a point on the curve.
func (pub PublicKey) IsValid() bool {
	_, err := crypto.DecompressPubkey(pub[:])
	return err == nil
}

// String implements the fmt.Stringer interface.
func (pub PublicKey) String() string {
	return hexutil.Encode(pub[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (pub PublicKey) MarshalText() ([]byte, error) {
	return []byte(pub.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (pub *PublicKey) UnmarshalText(data []byte) error {
	v, err := PublicKeyFromHex(string(data))
	if err != nil {
		return err
	}

	*pub = v
	return nil
}

// String implements the fmt.Stringer interface.
func (sig Signature) String() string {
	return hexutil.Encode(sig[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (sig Signature) MarshalText() ([]byte, error) {
	return []byte(sig.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (sig *Signature) UnmarshalText(data []byte) error {
	b, err := hexutil.Decode(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	if len(b) != SignatureLength {
		return fmt.Errorf("%w: got %d bytes, exp %d", ErrInvalidSignature, len(b), SignatureLength)
	}

	copy(sig[:], b)
	return nil
}

// =============================================================================

// Sign uses the specified private key to sign the digest. The signature is
// deterministic for a given key and digest.
func Sign(digest Hash, pk PrivateKey) (Signature, error) {
	if pk.key == nil {
		return Signature{}, ErrInvalidPrivateKey
	}

	// Sign the hash with the private key to produce a signature in the
	// [R|S|V] format.
	sig, err := crypto.Sign(digest[:], pk.key)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %s", ErrInvalidPrivateKey, err)
	}

	// The recovery id is not needed since the public key is recorded in
	// the output being spent.
	var s Signature
	copy(s[:], sig[:crypto.RecoveryIDOffset])

	return s, nil
}

// Verify reports whether the signature was produced over the digest by the
// private key matching the public key. Malformed keys and signatures are
// reported as false and never as an error.
func Verify(sig Signature, digest Hash, pub PublicKey) bool {
	if !pub.IsValid() {
		return false
	}

	return crypto.VerifySignature(pub[:], digest[:], sig[:])
}
