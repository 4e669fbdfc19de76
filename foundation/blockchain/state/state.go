// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/landledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/landledger/foundation/blockchain/peer"
)

// Set of errors the node reports on top of the ledger errors.
var (
	ErrPersistence      = database.ErrPersistence
	ErrPeerUnreachable  = errors.New("peer unreachable")
	ErrNoTransactions   = errors.New("no transactions in mempool")
	ErrStaleSeal        = errors.New("chain changed while sealing")
	ErrBlockRejected    = errors.New("block rejected by peer")
	ErrResponseTooLarge = errors.New("peer response too large")
)

// DefaultPeerTimeout is used when no timeout is configured for peer requests.
const DefaultPeerTimeout = 5 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for sealing, chain sync, and block sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
	SignalShareBlock(block database.Block)
	SignalSync()
}

// nopWorker is used until a worker registers itself with the state.
type nopWorker struct{}

func (nopWorker) Shutdown()                        {}
func (nopWorker) SignalStartMining()               {}
func (nopWorker) SignalCancelMining()              {}
func (nopWorker) SignalShareBlock(database.Block) {}
func (nopWorker) SignalSync()                      {}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	BeneficiaryID string
	Host          string
	Genesis       genesis.Genesis
	Storage       database.Storage
	KnownPeers    *peer.PeerSet
	Transport     Transport
	PeerTimeout   time.Duration
	AutoSeal      bool
	EvHandler     EventHandler
}

// State manages the ledger, the mempool and the view of the network. The
// mutex serializes every change to the chain. Reconciliations run one at a
// time under syncMu.
type State struct {
	mu     sync.Mutex
	syncMu sync.Mutex

	beneficiaryID string
	host          string
	evHandler     EventHandler
	autoSeal      bool
	peerTimeout   time.Duration
	syncStatus    SyncStatus

	knownPeers *peer.PeerSet
	genesis    genesis.Genesis
	mempool    *mempool.Mempool
	db         *database.Database
	transport  Transport

	Worker Worker
}

// New constructs a new node state, loading the chain from storage.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	// Access the storage for the chain and replay it.
	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport(nil, 0)
	}

	peerTimeout := cfg.PeerTimeout
	if peerTimeout <= 0 {
		peerTimeout = DefaultPeerTimeout
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	// Create the State to provide support for managing the ledger.
	state := State{
		beneficiaryID: cfg.BeneficiaryID,
		host:          cfg.Host,
		evHandler:     ev,
		autoSeal:      cfg.AutoSeal,
		peerTimeout:   peerTimeout,
		syncStatus:    SyncStatusSynced,

		knownPeers: knownPeers,
		genesis:    cfg.Genesis,
		mempool:    mempool.New(),
		db:         db,
		transport:  transport,

		Worker: nopWorker{},
	}

	// The Worker is replaced by the call to worker.Run which will assign
	// itself and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all ledger writing activity.
	s.Worker.Shutdown()

	// Make sure the storage is properly closed.
	return s.db.Close()
}

// AddKnownPeer provides the ability to add a new peer to the known peer list.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Match(s.host) {
		return false
	}

	return s.knownPeers.Add(pr)
}

// RemoveKnownPeer provides the ability to remove a peer from the known
// peer list.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}
