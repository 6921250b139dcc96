package merkle_test

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/merkle"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"pgregory.net/rapid"
)

// Data uses the sha256 hashing algorithm for the merkle tree.
type Data struct {
	x string
}

// Hash hashes the value using sha256.
func (d Data) Hash() signature.Hash {
	return sha256.Sum256([]byte(d.x))
}

func data(xs ...string) []Data {
	values := make([]Data, len(xs))
	for i, x := range xs {
		values[i] = Data{x: x}
	}
	return values
}

var table = []struct {
	data []Data
	root string
}{
	{data("a"), "0xca978112ca1bbdcafac231b39a23dc4da786eff8147c4e72b9807785afee48bb"},
	{data("a", "b"), "0xe5a01fee14e0ed5c48714f22180f25ad8365b53f9779f79dc4a3d7e93963f94a"},
	{data("a", "b", "c"), "0xd31a37ef6ac14a2db1470c4316beb5592e6afd4465022339adafda76a18ffabe"},
	{data("a", "b", "c", "d", "e"), "0xdd14d0ba516bb654a3052b76f051db026f4e322d0be081468fab99440f9e7305"},
}

// =============================================================================

func Test_Calculate(t *testing.T) {
	for i, tst := range table {
		root := merkle.Calculate(tst.data)
		if root.String() != tst.root {
			t.Errorf("[case:%d] error: expected hash equal to %s got %s", i, tst.root, root)
		}
	}

	if root := merkle.Calculate([]Data{}); root != signature.ZeroHash {
		t.Errorf("expected the zero hash for no content, got %s", root)
	}
}

func Test_NewTree(t *testing.T) {
	for i, tst := range table {
		tree, err := merkle.NewTree(tst.data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", i, err)
		}
		if tree.MerkleRoot().String() != tst.root {
			t.Errorf("[case:%d] error: expected hash equal to %s got %s", i, tst.root, tree.MerkleRoot())
		}
		if err := tree.Verify(); err != nil {
			t.Errorf("[case:%d] error: expected tree to be valid: %v", i, err)
		}
		if got := tree.Values(); len(got) != len(tst.data) {
			t.Errorf("[case:%d] error: expected %d values got %d", i, len(tst.data), len(got))
		}
	}

	if _, err := merkle.NewTree([]Data{}); !errors.Is(err, merkle.ErrNoContent) {
		t.Errorf("expected no content error, got %v", err)
	}
}

func Test_VerifyTree(t *testing.T) {
	tree, err := merkle.NewTree(data("a", "b", "c"))
	if err != nil {
		t.Fatal(err)
	}

	tree.Root.Hash = signature.HashOf("tampered")
	if err := tree.Verify(); err == nil {
		t.Errorf("expected tree to be invalid")
	}
}

func Test_Proof(t *testing.T) {
	for i, tst := range table {
		tree, err := merkle.NewTree(tst.data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", i, err)
		}

		for _, d := range tst.data {
			proof, order, err := tree.Proof(d.Hash())
			if err != nil {
				t.Fatalf("[case:%d] error: unexpected error: %v", i, err)
			}
			if !merkle.VerifyProof(tree.MerkleRoot(), d.Hash(), proof, order) {
				t.Errorf("[case:%d] error: expected proof for %q to verify", i, d.x)
			}
			if merkle.VerifyProof(tree.MerkleRoot(), Data{x: "zz"}.Hash(), proof, order) {
				t.Errorf("[case:%d] error: expected proof for other data to fail", i)
			}
		}
	}

	tree, _ := merkle.NewTree(data("a", "b"))
	if _, _, err := tree.Proof(Data{x: "c"}.Hash()); err == nil {
		t.Errorf("expected an error for data not in the tree")
	}
}

func Test_OrderSensitive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 16).Draw(t, "n")

		values := make([]Data, n)
		for i := range values {
			values[i] = Data{x: fmt.Sprintf("tx-%d", i)}
		}

		i := rapid.IntRange(0, n-1).Draw(t, "i")
		j := rapid.IntRange(0, n-1).Filter(func(j int) bool { return j != i }).Draw(t, "j")

		swapped := make([]Data, n)
		copy(swapped, values)
		swapped[i], swapped[j] = swapped[j], swapped[i]

		if merkle.Calculate(values) == merkle.Calculate(swapped) {
			t.Fatalf("expected swapping %d and %d to change the root", i, j)
		}

		mutated := make([]Data, n)
		copy(mutated, values)
		mutated[i] = Data{x: "mutated"}

		if merkle.Calculate(values) == merkle.Calculate(mutated) {
			t.Fatalf("expected mutating %d to change the root", i)
		}
	})
}
