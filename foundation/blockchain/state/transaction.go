package state

import "github.com/ardanlabs/utxochain/foundation/blockchain/database"

// UpsertWalletTransaction accepts a transaction from a wallet for inclusion.
func (s *State) UpsertWalletTransaction(tx database.Tx) error {
	return s.upsertTransaction("wallet", tx)
}

// UpsertNodeTransaction accepts a transaction relayed by a node for inclusion.
func (s *State) UpsertNodeTransaction(tx database.Tx) error {
	return s.upsertTransaction("node", tx)
}

// =============================================================================

// upsertTransaction validates the transaction against the ledger and adds
// it to the mempool.
func (s *State) upsertTransaction(source string, tx database.Tx) error {
	n, err := s.mempool.Upsert(tx, s.db)
	if err != nil {
		s.evHandler("state: upsertTransaction: REJECTED: source[%s]: tx[%s]: %s", source, tx, err)
		return err
	}

	s.evHandler("state: upsertTransaction: source[%s]: tx[%s]: mempool[%d]", source, tx, n)

	return nil
}
