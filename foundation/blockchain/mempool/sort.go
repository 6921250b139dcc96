package mempool

import (
	"sort"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
)

// selectByFee returns howMany transactions with the best fee. Transactions
// with the same fee are ordered by hash so the selection is deterministic.
// Pass -1 for all the transactions.
func selectByFee(entries []entry, howMany int) []database.Tx {

	/*
		tx[0x7a..]: fee 10
		tx[0x13..]: fee 50
		tx[0xc4..]: fee 100
		tx[0x05..]: fee 10
	*/

	sort.Sort(byFee(entries))

	/*
		tx[0xc4..]: fee 100
		tx[0x13..]: fee 50
		tx[0x05..]: fee 10
		tx[0x7a..]: fee 10
	*/

	if howMany < 0 || howMany > len(entries) {
		howMany = len(entries)
	}

	final := make([]database.Tx, howMany)
	for i := range final {
		final[i] = entries[i].tx
	}

	return final
}

// =============================================================================

// byFee provides sorting support by the transaction fee value.
type byFee []entry

// Len returns the number of transactions in the list.
func (bf byFee) Len() int {
	return len(bf)
}

// Less helps to sort the list by fee in decending order to pick the
// transactions that provide the best reward.
func (bf byFee) Less(i, j int) bool {
	if bf[i].fee != bf[j].fee {
		return bf[i].fee > bf[j].fee
	}
	return bf[i].tx.Hash().Cmp(bf[j].tx.Hash()) < 0
}

// Swap moves transactions in the order of the fee value.
func (bf byFee) Swap(i, j int) {
	bf[i], bf[j] = bf[j], bf[i]
}
