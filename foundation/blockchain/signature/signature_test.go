package signature_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/holiman/uint256"
)

const (
	pkHexKey    = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	otherHexKey = "aed31b6b5a7a2f3d2d1a02a3e4d8c1a7a9e7d2b3e1c5f9a8b7c6d5e4f3a2b1c0"
)

// =============================================================================

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}
	hash := "0x69accde652bec399bd15ef05eba5bc9201f4cece20b027533bec9b3462ae1854"

	h := signature.HashOf(value)
	if h.String() != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h.String()[:6])
	}

	h = signature.HashOf(value)
	if h.String() != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}

	other := struct {
		Name string
	}{
		Name: "Jill",
	}
	if signature.HashOf(other) == h {
		t.Fatalf("Should get a different hash for a different value.")
	}
}

func Test_HashUnencodable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Should panic for a value that can't be encoded.")
		}
	}()

	h := signature.HashOf(-5)
	t.Fatalf("Should not produce a hash for a signed integer, got %s", h)
}

func Test_HashPair(t *testing.T) {
	exp := "0xf5a5fd42d16a20302798ef6ed309979b43003d2320d9f0e8ea9831a92759fb4b"

	h := signature.HashPair(signature.ZeroHash, signature.ZeroHash)
	if h.String() != exp {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should get back the digest of the concatenation.")
	}

	a := signature.HashOf("a")
	b := signature.HashOf("b")
	if signature.HashPair(a, b) == signature.HashPair(b, a) {
		t.Fatalf("Should be sensitive to the order of the pair.")
	}
}

func Test_HashHex(t *testing.T) {
	h := signature.HashOf("value")

	got, err := signature.HashFromHex(h.String())
	if err != nil {
		t.Fatalf("Should be able to parse the hash: %s", err)
	}
	if got != h {
		t.Fatalf("Should get back the same hash.")
	}

	if _, err := signature.HashFromHex("0x1234"); !errors.Is(err, signature.ErrInvalidHash) {
		t.Fatalf("Should get an invalid hash error for a short value: %v", err)
	}
}

func Test_MatchesTarget(t *testing.T) {
	h := signature.HashOf("value")

	if !h.MatchesTarget(new(uint256.Int).SetAllOne()) {
		t.Fatalf("Should match the maximum target.")
	}

	if !h.MatchesTarget(h.Int()) {
		t.Fatalf("Should match a target equal to the hash.")
	}

	below := new(uint256.Int).Sub(h.Int(), uint256.NewInt(1))
	if h.MatchesTarget(below) {
		t.Fatalf("Should not match a target below the hash.")
	}

	if !signature.ZeroHash.MatchesTarget(new(uint256.Int)) {
		t.Fatalf("Should match a zero target with the zero hash.")
	}
}

func Test_SignVerify(t *testing.T) {
	pk, err := signature.PrivateKeyFromHex(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load a private key: %s", err)
	}

	digest := signature.HashOf("spend")

	sig, err := signature.Sign(digest, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if !signature.Verify(sig, digest, pk.PublicKey()) {
		t.Fatalf("Should be able to verify the signature.")
	}

	sig2, err := signature.Sign(digest, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}
	if sig != sig2 {
		t.Fatalf("Should get the same signature for the same digest.")
	}

	if signature.Verify(sig, signature.HashOf("other"), pk.PublicKey()) {
		t.Fatalf("Should not verify against a different digest.")
	}
}

func Test_VerifyNegatives(t *testing.T) {
	pk, err := signature.PrivateKeyFromHex(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load a private key: %s", err)
	}

	other, err := signature.PrivateKeyFromHex(otherHexKey)
	if err != nil {
		t.Fatalf("Should be able to load a private key: %s", err)
	}

	digest := signature.HashOf("spend")

	sig, err := signature.Sign(digest, other)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if signature.Verify(sig, digest, pk.PublicKey()) {
		t.Fatalf("Should not verify a signature from a different key.")
	}

	if signature.Verify(signature.Signature{}, digest, pk.PublicKey()) {
		t.Fatalf("Should not verify an empty signature.")
	}

	if signature.Verify(sig, digest, signature.PublicKey{}) {
		t.Fatalf("Should not verify against a malformed public key.")
	}

	var garbage signature.Signature
	for i := range garbage {
		garbage[i] = 0xff
	}
	if signature.Verify(garbage, digest, other.PublicKey()) {
		t.Fatalf("Should not verify a garbage signature.")
	}
}

func Test_Keys(t *testing.T) {
	if _, err := signature.Sign(signature.HashOf("x"), signature.PrivateKey{}); !errors.Is(err, signature.ErrInvalidPrivateKey) {
		t.Fatalf("Should get an invalid private key error: %v", err)
	}

	if _, err := signature.PrivateKeyFromHex("zz"); !errors.Is(err, signature.ErrInvalidPrivateKey) {
		t.Fatalf("Should get an invalid private key error: %v", err)
	}

	pk, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}

	pub := pk.PublicKey()
	if !pub.IsValid() {
		t.Fatalf("Should get a valid public key.")
	}

	got, err := signature.PublicKeyFromHex(pub.String())
	if err != nil {
		t.Fatalf("Should be able to parse the public key: %s", err)
	}
	if got != pub {
		t.Fatalf("Should get back the same public key.")
	}

	var bad signature.PublicKey
	bad[0] = 0x02
	if _, err := signature.PublicKeyFromBytes(bad[:]); !errors.Is(err, signature.ErrInvalidPublicKey) {
		t.Fatalf("Should get an invalid public key error: %v", err)
	}

	path := t.TempDir() + "/key.ecdsa"
	if err := signature.SavePrivateKey(path, pk); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}

	loaded, err := signature.LoadPrivateKey(path)
	if err != nil {
		t.Fatalf("Should be able to load the key: %s", err)
	}
	if loaded.PublicKey() != pub {
		t.Fatalf("Should load the same key that was saved.")
	}
}
