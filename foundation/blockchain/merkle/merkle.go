// Package merkle provides an implementation of a merkle tree for committing
// to the ordered set of transactions in a block.
package merkle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
)

// ErrNoContent is returned when a tree is requested for an empty set of values.
var ErrNoContent = errors.New("cannot construct tree with no content")

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable interface {
	Hash() signature.Hash
}

// =============================================================================

// Calculate returns the merkle root for the ordered set of values. An empty
// set commits to nothing and produces the zero hash.
func Calculate[T Hashable](values []T) signature.Hash {
	if len(values) == 0 {
		return signature.ZeroHash
	}

	level := make([]signature.Hash, len(values))
	for i, value := range values {
		level[i] = value.Hash()
	}

	for len(level) > 1 {
		next := make([]signature.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left, right := level[i], level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, signature.HashPair(left, right))
		}
		level = next
	}

	return level[0]
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable] struct {
	Root  *Node[T]
	Leafs []*Node[T]
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface.
func NewTree[T Hashable](values []T) (*Tree[T], error) {
	var t Tree[T]
	if err := t.Generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// Generate constructs the leafs and nodes of the tree from the specified
// data. If the tree has been generated previously, the tree is re-generated
// from scratch.
func (t *Tree[T]) Generate(values []T) error {
	if len(values) == 0 {
		return ErrNoContent
	}

	leafs := make([]*Node[T], len(values))
	for i, value := range values {
		leafs[i] = &Node[T]{
			Hash:  value.Hash(),
			Value: value,
			leaf:  true,
		}
	}

	t.Root = buildIntermediate(leafs)
	t.Leafs = leafs

	return nil
}

// MerkleRoot returns the root hash of the tree.
func (t *Tree[T]) MerkleRoot() signature.Hash {
	return t.Root.Hash
}

// Values returns the values stored in the tree in their original order.
func (t *Tree[T]) Values() []T {
	values := make([]T, len(t.Leafs))
	for i, node := range t.Leafs {
		values[i] = node.Value
	}

	return values
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving the value with the specified hash is in the tree.
// An order of 0 says the proof hash comes first in the concatenation,
// an order of 1 says it comes second.
func (t *Tree[T]) Proof(hash signature.Hash) ([]signature.Hash, []int64, error) {
	for _, node := range t.Leafs {
		if node.Hash != hash {
			continue
		}

		var proof []signature.Hash
		var order []int64

		for parent := node.Parent; parent != nil; node, parent = parent, parent.Parent {
			if parent.Left == node {
				proof = append(proof, parent.Right.Hash)
				order = append(order, 1)
				continue
			}
			proof = append(proof, parent.Left.Hash)
			order = append(order, 0)
		}

		return proof, order, nil
	}

	return nil, nil, errors.New("unable to find data in tree")
}

// Verify recalculates every level of the tree and reports whether the
// result matches the root hash held by the tree.
func (t *Tree[T]) Verify() error {
	if t.Root == nil {
		return ErrNoContent
	}

	if t.Root.verify() != t.Root.Hash {
		return errors.New("root hash invalid")
	}

	return nil
}

// String returns a string representation of the tree. Only leaf nodes are
// included in the output.
func (t *Tree[T]) String() string {
	var b strings.Builder
	for _, l := range t.Leafs {
		fmt.Fprintln(&b, l)
	}

	return b.String()
}

// =============================================================================

// VerifyProof walks the proof from the leaf hash up and reports whether the
// calculated root matches the expected root.
func VerifyProof(root signature.Hash, leaf signature.Hash, proof []signature.Hash, order []int64) bool {
	if len(proof) != len(order) {
		return false
	}

	hash := leaf
	for i, p := range proof {
		switch order[i] {
		case 0:
			hash = signature.HashPair(p, hash)
		case 1:
			hash = signature.HashPair(hash, p)
		default:
			return false
		}
	}

	return hash == root
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
type Node[T Hashable] struct {
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   signature.Hash
	Value  T
	leaf   bool
}

// verify walks down the tree until hitting a leaf, calculating the hash at
// each level and returning the resulting hash of the node.
func (n *Node[T]) verify() signature.Hash {
	if n.leaf {
		return n.Value.Hash()
	}

	return signature.HashPair(n.Left.verify(), n.Right.verify())
}

// String returns a string representation of the node.
func (n *Node[T]) String() string {
	return fmt.Sprintf("%t %s %v", n.leaf, n.Hash, n.Value)
}

// =============================================================================

// buildIntermediate is a helper function that for a given list of nodes
// constructs the levels above it until a single root remains. A level with
// an odd count pairs its last node with itself.
func buildIntermediate[T Hashable](nl []*Node[T]) *Node[T] {
	for len(nl) > 1 {
		nodes := make([]*Node[T], 0, (len(nl)+1)/2)

		for i := 0; i < len(nl); i += 2 {
			left, right := nl[i], nl[i]
			if i+1 < len(nl) {
				right = nl[i+1]
			}

			n := Node[T]{
				Left:  left,
				Right: right,
				Hash:  signature.HashPair(left.Hash, right.Hash),
			}

			left.Parent = &n
			right.Parent = &n
			nodes = append(nodes, &n)
		}

		nl = nodes
	}

	return nl[0]
}
