// Package peer maintains the set of nodes this node knows about and reports
// them in NodeList responses.
package peer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/validate"
)

// Peer represents information about a Node in the network.
type Peer struct {
	Host string `validate:"required,hostname_port"`
}

// New constructs a peer for the specified host. The host must be in
// host:port form.
func New(host string) (Peer, error) {
	p := Peer{
		Host: host,
	}

	if err := validate.Check(p); err != nil {
		return Peer{}, fmt.Errorf("peer %q: %w", host, err)
	}

	return p, nil
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new node to the set.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer]
	if !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// AddHosts validates and adds each host to the set. It returns the number
// of hosts that were new. Nothing is added if any host is invalid.
func (ps *PeerSet) AddHosts(hosts []string) (int, error) {
	peers := make([]Peer, len(hosts))
	for i, host := range hosts {
		p, err := New(host)
		if err != nil {
			return 0, err
		}
		peers[i] = p
	}

	var added int
	for _, p := range peers {
		if ps.Add(p) {
			added++
		}
	}

	return added, nil
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Copy returns a list of the known peers excluding the specified host,
// sorted by host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []Peer
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Host < peers[j].Host
	})

	return peers
}

// Hosts returns the hosts of the known peers excluding the specified host.
func (ps *PeerSet) Hosts(host string) []string {
	peers := ps.Copy(host)

	hosts := make([]string, len(peers))
	for i, p := range peers {
		hosts[i] = p.Host
	}

	return hosts
}
