package state

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/wire"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// QueryUTXOs returns the unspent outputs owned by the key, ordered by
// output hash, flagging the ones pending transactions already spend.
func (s *State) QueryUTXOs(owner signature.PublicKey) []wire.UTXO {
	owned := s.db.UTXOsByOwner(owner)

	hashes := make([]signature.Hash, 0, len(owned))
	for hash := range owned {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Cmp(hashes[j]) < 0
	})

	utxos := make([]wire.UTXO, len(hashes))
	for i, hash := range hashes {
		utxos[i] = wire.UTXO{
			Output: owned[hash],
			Marked: s.mempool.Marked(hash),
		}
	}

	return utxos
}

// QueryBalance returns the value of the unspent outputs owned by the key.
func (s *State) QueryBalance(owner signature.PublicKey) uint64 {
	return s.db.Balance(owner)
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlocksByNumber returns the set of blocks based on block numbers.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) ([]database.Block, error) {
	latest := s.db.Height() - 1

	if from == QueryLatest {
		from = latest
		to = from
	}
	if to == QueryLatest || to > latest {
		to = latest
	}

	if from > to {
		return nil, fmt.Errorf("block range %d-%d: %w", from, to, database.ErrNotFound)
	}

	out := make([]database.Block, 0, to-from+1)
	for i := from; i <= to; i++ {
		block, err := s.db.BlockByNumber(i)
		if err != nil {
			return nil, err
		}
		out = append(out, block)
	}

	return out, nil
}
