package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
)

// Balances writes the balance of every owner holding unspent outputs, or of
// the single owner when a public key is specified.
func Balances(w io.Writer, onlyOwner string, st *state.State, ns *nameservice.NameService) error {
	fmt.Fprintf(w, "LatestBlockHash: %s\n\n", st.RetrieveLatestBlock().Hash())

	if onlyOwner != "" {
		owner, err := signature.PublicKeyFromHex(onlyOwner)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Owner: %s  Balance: %d\n", ns.Lookup(owner), st.QueryBalance(owner))
		return nil
	}

	bals := make(map[signature.PublicKey]uint64)
	for _, out := range st.RetrieveUTXOs() {
		bals[out.PubKey] += out.Value
	}

	owners := make([]signature.PublicKey, 0, len(bals))
	for owner := range bals {
		owners = append(owners, owner)
	}
	sort.Slice(owners, func(i, j int) bool {
		return owners[i].String() < owners[j].String()
	})

	for _, owner := range owners {
		fmt.Fprintf(w, "Owner: %s  Balance: %d\n", ns.Lookup(owner), bals[owner])
	}

	return nil
}
