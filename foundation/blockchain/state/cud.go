package state

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/peer"
)

// AddKnownPeer provides the ability to add a new peer.
func (s *State) AddKnownPeer(peer peer.Peer) bool {
	return s.knownPeers.Add(peer)
}

// AddKnownHosts validates and adds the hosts reported by another node.
func (s *State) AddKnownHosts(hosts []string) (int, error) {
	return s.knownPeers.AddHosts(hosts)
}

// RemoveKnownPeer removes a peer from the known peer list.
func (s *State) RemoveKnownPeer(peer peer.Peer) {
	s.knownPeers.Remove(peer)
}
