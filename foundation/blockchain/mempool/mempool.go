// Package mempool maintains the set of transactions waiting to be included
// in a block.
package mempool

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
)

// Ledger represents the view of the ledger the mempool validates
// transactions against.
type Ledger interface {
	ValidateTransaction(tx database.Tx) (uint64, error)
	UTXO(outputHash signature.Hash) (database.TxOutput, bool)
}

// entry is a pending transaction and the fee it pays.
type entry struct {
	tx  database.Tx
	fee uint64
}

// Mempool represents a cache of pending transactions keyed by transaction
// hash with a second index of the outputs those transactions spend.
type Mempool struct {
	mu     sync.RWMutex
	pool   map[signature.Hash]entry
	marked map[signature.Hash]signature.Hash
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{
		pool:   make(map[signature.Hash]entry),
		marked: make(map[signature.Hash]signature.Hash),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert validates the transaction against the ledger and adds it to the
// pool. A transaction spending an output already marked by a different
// pending transaction is rejected. Adding a transaction that is already
// pending is a no-op.
func (mp *Mempool) Upsert(tx database.Tx, ledger Ledger) (int, error) {
	fee, err := ledger.ValidateTransaction(tx)
	if err != nil {
		return 0, err
	}

	txHash := tx.Hash()

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[txHash]; exists {
		return len(mp.pool), nil
	}

	// A block accepted since the validation above may have consumed an
	// input. Prune can't see this transaction until it is in the pool, so
	// the inputs are checked again under the lock Prune takes.
	for i, in := range tx.Inputs {
		if _, exists := ledger.UTXO(in.PrevOutputHash); !exists {
			return 0, fmt.Errorf("%w: input[%d] spends output %s no longer in the UTXO set", database.ErrInvalidTransactionInput, i, in.PrevOutputHash)
		}

		if other, exists := mp.marked[in.PrevOutputHash]; exists {
			return 0, fmt.Errorf("%w: input[%d] spends output %s marked by pending tx %s", database.ErrInvalidTransactionInput, i, in.PrevOutputHash, other)
		}
	}

	for _, in := range tx.Inputs {
		mp.marked[in.PrevOutputHash] = txHash
	}

	mp.pool[txHash] = entry{tx: tx, fee: fee}

	return len(mp.pool), nil
}

// Delete removes a transaction from the mempool and releases the outputs
// it marked.
func (mp *Mempool) Delete(txHash signature.Hash) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.delete(txHash)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[signature.Hash]entry)
	mp.marked = make(map[signature.Hash]signature.Hash)
}

// Marked reports whether the output is spent by a pending transaction.
func (mp *Mempool) Marked(outputHash signature.Hash) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.marked[outputHash]
	return exists
}

// Copy returns the pending transactions in fee order.
func (mp *Mempool) Copy() []database.Tx {
	return mp.PickBest(-1)
}

// PickBest returns the next set of transactions for the next block, the
// ones paying the highest fee first. Pass -1 for all the transactions.
func (mp *Mempool) PickBest(howMany int) []database.Tx {
	mp.mu.RLock()
	entries := make([]entry, 0, len(mp.pool))
	for _, e := range mp.pool {
		entries = append(entries, e)
	}
	mp.mu.RUnlock()

	return selectByFee(entries, howMany)
}

// Prune removes every pending transaction that spends an output no longer
// in the ledger's UTXO set. This is called after a block is accepted. It
// returns the number of transactions removed.
func (mp *Mempool) Prune(ledger Ledger) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var stale []signature.Hash
	for txHash, e := range mp.pool {
		for _, in := range e.tx.Inputs {
			if _, exists := ledger.UTXO(in.PrevOutputHash); !exists {
				stale = append(stale, txHash)
				break
			}
		}
	}

	for _, txHash := range stale {
		mp.delete(txHash)
	}

	return len(stale)
}

// =============================================================================

// delete removes the transaction and its marks. The caller must hold
// the write lock.
func (mp *Mempool) delete(txHash signature.Hash) {
	e, exists := mp.pool[txHash]
	if !exists {
		return
	}

	for _, in := range e.tx.Inputs {
		if mp.marked[in.PrevOutputHash] == txHash {
			delete(mp.marked, in.PrevOutputHash)
		}
	}

	delete(mp.pool, txHash)
}
