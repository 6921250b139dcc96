package database

import (
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/merkle"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/holiman/uint256"
)

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	TimeStamp     uint64         `json:"timestamp"`       // Bitcoin: Time the block was mined.
	Nonce         uint64         `json:"nonce"`           // Bitcoin: Value identified to solve the hash solution.
	PrevBlockHash signature.Hash `json:"prev_block_hash"` // Bitcoin: Hash of the previous block in the chain.
	MerkleRoot    signature.Hash `json:"merkle_root"`     // Bitcoin: Represents the merkle tree root hash for the transactions in this block.
	Target        uint256.Int    `json:"target"`          // Bitcoin: The value the header hash must not exceed.
}

// Hash returns the unique hash for the block header.
func (bh BlockHeader) Hash() signature.Hash {
	return signature.HashOf(bh)
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader `json:"header"`
	Trans  []Tx        `json:"trans"`
}

// NewBlock constructs a block on top of the specified parent hash with the
// merkle root calculated from the transactions. The nonce is left at zero
// for the miner to find.
func NewBlock(prevBlockHash signature.Hash, timeStamp uint64, target *uint256.Int, trans []Tx) Block {
	b := Block{
		Header: BlockHeader{
			TimeStamp:     timeStamp,
			PrevBlockHash: prevBlockHash,
			MerkleRoot:    merkle.Calculate(trans),
		},
		Trans: trans,
	}
	b.Header.Target.Set(target)

	return b
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() signature.Hash {

	// CORE NOTE: Hashing the block header and not the whole block so the blockchain
	// can be cryptographically checked by only needing block headers and not full
	// blocks with the transaction data. The merkle root in the header commits to
	// the transactions.

	return b.Header.Hash()
}

// ValidateBlock takes a block and validates the header against the parent
// block. A nil parent means the block is being validated as the genesis
// block, where only the parent hash and the merkle root can be checked.
func (b Block) ValidateBlock(parent *Block, required *uint256.Int, evHandler func(v string, args ...any)) error {
	return b.validateHeader(parent, required, true, evHandler)
}

// validateHeader runs the header checks in consensus order.
func (b Block) validateHeader(parent *Block, required *uint256.Int, solved bool, evHandler func(v string, args ...any)) error {
	hash := b.Hash()

	if parent == nil {
		evHandler("database: ValidateBlock: validate: blk[%s]: check: genesis parent hash is the zero hash", hash)

		if !b.Header.PrevBlockHash.IsZero() {
			return fmt.Errorf("%w: genesis parent hash is not the zero hash, got %s", ErrInvalidBlock, b.Header.PrevBlockHash)
		}

		evHandler("database: ValidateBlock: validate: blk[%s]: check: merkle root does match transactions", hash)

		return b.validateMerkleRoot()
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: parent hash does match parent block", hash)

	parentHash := parent.Hash()
	if b.Header.PrevBlockHash != parentHash {
		return fmt.Errorf("%w: parent block hash doesn't match our known parent, got %s, exp %s", ErrInvalidBlock, b.Header.PrevBlockHash, parentHash)
	}

	if solved {
		evHandler("database: ValidateBlock: validate: blk[%s]: check: block hash has been solved", hash)

		if !hash.MatchesTarget(&b.Header.Target) {
			return fmt.Errorf("%w: %s does not satisfy target %s", ErrInvalidHash, hash, b.Header.Target.Hex())
		}
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: block target is the required target", hash)

	if !b.Header.Target.Eq(required) {
		return fmt.Errorf("%w: target is not the required target, got %s, exp %s", ErrInvalidBlockHeader, b.Header.Target.Hex(), required.Hex())
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: merkle root does match transactions", hash)

	if err := b.validateMerkleRoot(); err != nil {
		return err
	}

	evHandler("database: ValidateBlock: validate: blk[%s]: check: block's timestamp is greater than parent block's timestamp", hash)

	if b.Header.TimeStamp <= parent.Header.TimeStamp {
		return fmt.Errorf("%w: block timestamp is not after parent block, parent %d, block %d", ErrInvalidBlockHeader, parent.Header.TimeStamp, b.Header.TimeStamp)
	}

	return nil
}

// validateMerkleRoot recalculates the merkle root over the transactions.
func (b Block) validateMerkleRoot() error {
	root := merkle.Calculate(b.Trans)
	if b.Header.MerkleRoot != root {
		return fmt.Errorf("%w: merkle root does not match transactions, got %s, exp %s", ErrInvalidMerkleRoot, b.Header.MerkleRoot, root)
	}

	return nil
}
