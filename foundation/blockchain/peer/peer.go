// Package peer maintains the peer related information such as the set
// of known peers and their status.
package peer

import (
	"slices"
	"strings"
	"sync"
)

// Peer represents information about a node in the network.
type Peer struct {
	Host string `json:"host"`
}

// New constructs a new peer value.
func New(host string) Peer {
	return Peer{
		Host: strings.TrimSpace(host),
	}
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// Status represents what a peer reports about its chain.
type Status struct {
	Length          int    `json:"length"`
	LatestBlockHash string `json:"latest_block_hash"`
	KnownPeers      []Peer `json:"known_peers"`
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new set to manage node peer information.
func NewPeerSet(hosts ...string) *PeerSet {
	ps := PeerSet{
		set: make(map[Peer]struct{}),
	}

	for _, host := range hosts {
		if p := New(host); p.Host != "" {
			ps.set[p] = struct{}{}
		}
	}

	return &ps
}

// Add adds a new node to the set. It reports whether the peer was new.
func (ps *PeerSet) Add(peer Peer) bool {
	if peer.Host == "" {
		return false
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; exists {
		return false
	}

	ps.set[peer] = struct{}{}
	return true
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Copy returns the known peers sorted by host, leaving out the specified
// host which is usually the node itself.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []Peer
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	slices.SortFunc(peers, func(a, b Peer) int {
		return strings.Compare(a.Host, b.Host)
	})

	return peers
}
