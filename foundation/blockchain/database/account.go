package database

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
)

// UTXO returns the unspent output stored under the specified hash.
func (db *Database) UTXO(outputHash signature.Hash) (TxOutput, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out, exists := db.utxos[outputHash]
	return out, exists
}

// UTXOsByOwner returns a copy of the unspent outputs locked to the
// specified public key.
func (db *Database) UTXOsByOwner(owner signature.PublicKey) map[signature.Hash]TxOutput {
	db.mu.RLock()
	defer db.mu.RUnlock()

	utxos := make(map[signature.Hash]TxOutput)
	for outputHash, out := range db.utxos {
		if out.PubKey == owner {
			utxos[outputHash] = out
		}
	}

	return utxos
}

// Balance returns the total value of the unspent outputs locked to the
// specified public key.
func (db *Database) Balance(owner signature.PublicKey) uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var balance uint64
	for _, out := range db.utxos {
		if out.PubKey == owner {
			balance += out.Value
		}
	}

	return balance
}

// CopyUTXOs makes a copy of the current set of unspent outputs.
func (db *Database) CopyUTXOs() map[signature.Hash]TxOutput {
	db.mu.RLock()
	defer db.mu.RUnlock()

	utxos := make(map[signature.Hash]TxOutput, len(db.utxos))
	for outputHash, out := range db.utxos {
		utxos[outputHash] = out
	}

	return utxos
}
