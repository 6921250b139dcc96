// Package state is the core API for a node. It ties the ledger, the mempool
// and the set of known peers together and answers protocol requests.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/mempool"
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Host       string
	Genesis    genesis.Genesis
	KnownPeers *peer.PeerSet
	EvHandler  EventHandler
	Now        func() time.Time
}

// State manages the blockchain database.
type State struct {
	host      string
	evHandler EventHandler
	now       func() time.Time

	// mu serializes block submission so the mempool is pruned against the
	// ledger the block was accepted into.
	mu sync.Mutex

	genesis    genesis.Genesis
	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool
	db         *database.Database
}

// New constructs a node state holding a ledger that has accepted the
// genesis block described by the genesis file.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	db := database.New(database.Config{
		Difficulty: cfg.Genesis.DifficultyConfig(),
		EvHandler:  database.EventHandler(ev),
	})

	// The genesis block mints the allocations every node starts from.
	if err := db.AcceptBlock(cfg.Genesis.Block()); err != nil {
		return nil, fmt.Errorf("accepting genesis block: %w", err)
	}

	state := State{
		host:      cfg.Host,
		evHandler: ev,
		now:       now,

		genesis:    cfg.Genesis,
		knownPeers: knownPeers,
		mempool:    mempool.New(),
		db:         db,
	}

	return &state, nil
}

// Truncate clears the mempool. The ledger is append only and is
// never reset.
func (s *State) Truncate() {
	s.mempool.Truncate()
}
