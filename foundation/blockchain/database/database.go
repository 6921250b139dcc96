// Package database maintains the accepted chain of blocks and the set of
// unspent transaction outputs. It enforces the consensus rules a block must
// pass before it changes the ledger.
package database

import (
	"fmt"
	"math/big"
	"math/bits"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/difficulty"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/holiman/uint256"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct the database.
type Config struct {
	Difficulty difficulty.Config
	EvHandler  EventHandler
}

// Database manages the chain of accepted blocks and the set of outputs that
// are available to be spent. AcceptBlock is the only way to change it.
type Database struct {
	mu sync.RWMutex

	difficulty difficulty.Config
	evHandler  EventHandler

	blocks []Block
	utxos  map[signature.Hash]TxOutput
}

// New constructs an empty database.
func New(cfg Config) *Database {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	db := Database{
		difficulty: cfg.Difficulty,
		evHandler:  ev,
		utxos:      make(map[signature.Hash]TxOutput),
	}

	return &db
}

// Rebuild constructs a database by accepting the specified blocks in order.
// This recreates the UTXO set from the chain alone.
func Rebuild(cfg Config, blocks []Block) (*Database, error) {
	db := New(cfg)

	for i, block := range blocks {
		if err := db.AcceptBlock(block); err != nil {
			return nil, fmt.Errorf("block[%d]: %w", i, err)
		}
	}

	return db, nil
}

// =============================================================================

// AcceptBlock validates the block against the consensus rules and, only if
// every check passes, removes the outputs it spends from the UTXO set, adds
// the outputs it creates and appends it to the chain. On any error the
// database is left exactly as it was.
func (db *Database) AcceptBlock(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	hash := block.Hash()

	db.evHandler("database: AcceptBlock: started: blk[%d]: hash[%s]: numTrans[%d]", len(db.blocks), hash, len(block.Trans))

	chg, err := db.validate(block, true)
	if err != nil {
		db.evHandler("database: AcceptBlock: REJECTED: blk[%d]: hash[%s]: %s", len(db.blocks), hash, err)
		return err
	}

	db.evHandler("database: AcceptBlock: apply: blk[%d]: spent[%d]: created[%d]", len(db.blocks), len(chg.spent), len(chg.created))

	for _, outputHash := range chg.spent {
		delete(db.utxos, outputHash)
	}

	for outputHash, out := range chg.created {
		db.utxos[outputHash] = out
	}

	db.blocks = append(db.blocks, block)

	db.evHandler("database: AcceptBlock: completed: blk[%d]: hash[%s]", len(db.blocks)-1, hash)

	return nil
}

// ValidateBlock runs the full set of consensus checks for the block as the
// next block in the chain without applying it.
func (db *Database) ValidateBlock(block Block) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, err := db.validate(block, true)
	return err
}

// ValidateTemplate runs the consensus checks for an unsolved block template.
// Every check applies except that the header hash need not satisfy the
// target yet.
func (db *Database) ValidateTemplate(block Block) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, err := db.validate(block, false)
	return err
}

// =============================================================================

// change represents the outputs a validated block spends and creates.
type change struct {
	spent   []signature.Hash
	created map[signature.Hash]TxOutput
}

// validate performs the consensus checks in order and returns the change
// the block makes to the UTXO set. The proof of work is only checked for a
// solved block. The caller must hold the lock.
func (db *Database) validate(block Block, solved bool) (change, error) {
	var parent *Block
	if len(db.blocks) > 0 {
		parent = &db.blocks[len(db.blocks)-1]
	}

	required := db.difficulty.Required(history(db.blocks))

	if err := block.validateHeader(parent, required, solved, db.evHandler); err != nil {
		return change{}, err
	}

	return db.validateTransactions(block, parent == nil)
}

// validateTransactions checks every transaction in the block against the
// UTXO set. An output spent by an earlier transaction in the block is no
// longer available to a later one. Genesis transactions mint the initial
// supply so value conservation is not applied to them.
func (db *Database) validateTransactions(block Block, genesis bool) (change, error) {
	chg := change{
		created: make(map[signature.Hash]TxOutput),
	}
	consumed := make(map[signature.Hash]struct{})

	for i, tx := range block.Trans {
		db.evHandler("database: validateTransactions: tx[%d]: hash[%s]", i, tx.Hash())

		if _, err := db.validateTransaction(tx, genesis, consumed, chg.created); err != nil {
			return change{}, fmt.Errorf("tx[%d]: %w", i, err)
		}

		for _, in := range tx.Inputs {
			chg.spent = append(chg.spent, in.PrevOutputHash)
		}
	}

	return chg, nil
}

// ValidateTransaction checks a single transaction against the current UTXO
// set as if it were the only transaction in the next block and returns the
// fee it pays.
func (db *Database) ValidateTransaction(tx Tx) (uint64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	consumed := make(map[signature.Hash]struct{})
	created := make(map[signature.Hash]TxOutput)

	return db.validateTransaction(tx, false, consumed, created)
}

// validateTransaction checks the transaction's inputs and outputs, records
// the outputs it consumes and creates, and returns the fee it pays. Only
// genesis transactions may have no inputs, since there is no coinbase and
// value enters the chain through the genesis block alone. The caller must
// hold the lock.
func (db *Database) validateTransaction(tx Tx, genesis bool, consumed map[signature.Hash]struct{}, created map[signature.Hash]TxOutput) (uint64, error) {
	if !genesis && len(tx.Inputs) == 0 {
		return 0, fmt.Errorf("%w: transaction has no inputs", ErrInvalidTransaction)
	}

	var inputValue uint64
	for j, in := range tx.Inputs {
		out, exists := db.utxos[in.PrevOutputHash]
		if !exists {
			return 0, fmt.Errorf("%w: input[%d] spends unknown output %s", ErrInvalidTransactionInput, j, in.PrevOutputHash)
		}

		if _, spent := consumed[in.PrevOutputHash]; spent {
			return 0, fmt.Errorf("%w: input[%d] spends output %s that is already spent", ErrInvalidTransactionInput, j, in.PrevOutputHash)
		}

		if !signature.Verify(in.Signature, in.PrevOutputHash, out.PubKey) {
			return 0, fmt.Errorf("%w: input[%d] is not signed by the owner of %s", ErrInvalidSignature, j, in.PrevOutputHash)
		}

		sum, carry := bits.Add64(inputValue, out.Value, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%w: input[%d] overflows the total value", ErrInvalidTransactionInput, j)
		}
		inputValue = sum

		consumed[in.PrevOutputHash] = struct{}{}
	}

	outputValue, err := tx.OutputValue()
	if err != nil {
		return 0, err
	}

	if !genesis && inputValue < outputValue {
		return 0, fmt.Errorf("%w: outputs %d exceed inputs %d", ErrInvalidTransaction, outputValue, inputValue)
	}

	for j, out := range tx.Outputs {
		outputHash := out.Hash()

		if _, exists := db.utxos[outputHash]; exists {
			return 0, fmt.Errorf("%w: output[%d] %s already exists", ErrInvalidTransactionOutput, j, outputHash)
		}

		if _, exists := created[outputHash]; exists {
			return 0, fmt.Errorf("%w: output[%d] %s is created twice", ErrInvalidTransactionOutput, j, outputHash)
		}

		created[outputHash] = out
	}

	if genesis {
		return 0, nil
	}

	return inputValue - outputValue, nil
}

// =============================================================================

// Height returns the number of blocks in the chain.
func (db *Database) Height() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return uint64(len(db.blocks))
}

// LatestBlock returns the latest block. The boolean is false when the
// chain is empty.
func (db *Database) LatestBlock() (Block, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if len(db.blocks) == 0 {
		return Block{}, false
	}

	return db.blocks[len(db.blocks)-1], true
}

// BlockByNumber returns the block at the specified position, the genesis
// block being number 0.
func (db *Database) BlockByNumber(num uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if num >= uint64(len(db.blocks)) {
		return Block{}, fmt.Errorf("block %d: %w", num, ErrNotFound)
	}

	return db.blocks[num], nil
}

// CopyBlocks makes a copy of the chain of blocks.
func (db *Database) CopyBlocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.blocks))
	copy(blocks, db.blocks)

	return blocks
}

// Target returns the target the next block must declare.
func (db *Database) Target() *uint256.Int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.difficulty.Required(history(db.blocks))
}

// TotalWork returns the expected number of hashes performed to produce the
// chain. The genesis block carries no proof of work.
func (db *Database) TotalWork() *big.Int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	total := new(big.Int)
	for i := 1; i < len(db.blocks); i++ {
		total.Add(total, difficulty.Work(&db.blocks[i].Header.Target))
	}

	return total
}

// =============================================================================

// history adapts the chain of blocks for the difficulty calculation.
type history []Block

func (h history) Len() int                  { return len(h) }
func (h history) TimeStamp(i int) uint64    { return h[i].Header.TimeStamp }
func (h history) Target(i int) *uint256.Int { return &h[i].Header.Target }
