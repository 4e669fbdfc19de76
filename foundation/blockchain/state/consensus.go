package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/peer"
)

// SyncStatus represents where the node is in reconciling with its peers.
type SyncStatus string

// Set of sync states.
const (
	SyncStatusSyncing SyncStatus = "SYNCING"
	SyncStatusSynced  SyncStatus = "SYNCED"
)

// maxSyncRounds bounds how many times in a row a longer chain is adopted
// during a single reconciliation.
const maxSyncRounds = 5

// =============================================================================

// ProcessProposedBlock takes a block received from a peer, validates it
// against the current head and if that passes, adds the block to the local
// chain. A block that does not extend the head makes the node reconcile with
// its peers.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: prevBlk[%s]: newBlk[%d]: numTrans[%d]", block.PreviousHash, block.Index, len(block.Transactions))
	defer s.evHandler("state: ProcessProposedBlock: completed: newBlk[%d]", block.Index)

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Append(block)
	if err != nil && !errors.Is(err, ErrPersistence) {
		s.evHandler("state: ProcessProposedBlock: REJECTED: %s", err)
		s.Worker.SignalSync()
		return err
	}

	// Any sealing on the old head is now stale.
	s.Worker.SignalCancelMining()

	removed := s.mempool.Delete(block.Transactions...)
	s.evHandler("state: ProcessProposedBlock: removed [%d] txs from mempool", removed)

	s.blockEvent(block)

	return err
}

// Reconcile asks every known peer for its chain and adopts the longest one
// that validates and is strictly longer than the local chain. Ties keep the
// local chain. A call made while another reconciliation is running waits for
// it to finish. It reports whether a chain was adopted.
func (s *State) Reconcile(ctx context.Context) (bool, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.evHandler("state: Reconcile: started")
	defer s.evHandler("state: Reconcile: completed")

	s.setSyncStatus(SyncStatusSyncing)
	defer s.setSyncStatus(SyncStatusSynced)

	var adopted bool
	for range maxSyncRounds {
		replaced, err := s.reconcileOnce(ctx)
		if err != nil {
			return adopted, err
		}

		if !replaced {
			break
		}
		adopted = true
	}

	return adopted, nil
}

// RetrieveSyncStatus returns the current sync status.
func (s *State) RetrieveSyncStatus() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.syncStatus
}

// =============================================================================

func (s *State) setSyncStatus(status SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncStatus = status
}

// reconcileOnce performs one round of chain requests. The requests and the
// validation of the candidates happen without holding the lock.
func (s *State) reconcileOnce(ctx context.Context) (bool, error) {
	peers := s.RetrieveKnownPeers()
	chains := s.requestChains(ctx, peers)

	localLen := s.db.Length()

	// Peers are sorted by host so the same candidates always produce
	// the same choice.
	var best []database.Block
	var bestPeer peer.Peer
	for i, chain := range chains {
		if len(chain) <= localLen || len(chain) <= len(best) {
			continue
		}

		if err := database.ValidateChain(s.genesis, chain); err != nil {
			s.evHandler("state: Reconcile: peer[%s]: length[%d]: INVALID: %s", peers[i].Host, len(chain), err)
			continue
		}

		best = chain
		bestPeer = peers[i]
	}

	if best == nil {
		s.evHandler("state: Reconcile: local chain length[%d] is the longest", localLen)
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The local chain may have grown while the peers were queried.
	if len(best) <= s.db.Length() {
		s.evHandler("state: Reconcile: local chain grew to [%d], keeping it", s.db.Length())
		return false, nil
	}

	s.evHandler("state: Reconcile: adopting chain from peer[%s]: length[%d]", bestPeer.Host, len(best))

	err := s.db.Replace(best)
	if err != nil && !errors.Is(err, ErrPersistence) {
		return false, err
	}

	s.Worker.SignalCancelMining()
	s.mempool.Truncate()

	latest := best[len(best)-1]
	s.evHandler(`viewer: chain: {"length":%d,"hash":%q}`, len(best), latest.Hash())

	return true, err
}

// requestChains requests the chain of every peer concurrently. The result
// for an unreachable peer is nil.
func (s *State) requestChains(ctx context.Context, peers []peer.Peer) [][]database.Block {
	chains := make([][]database.Block, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
			defer cancel()

			chain, err := s.transport.RequestChain(ctx, pr)
			if err != nil {
				err = fmt.Errorf("%w: %s: %w", ErrPeerUnreachable, pr.Host, err)
				s.evHandler("state: Reconcile: WARNING: %s", err)
				return
			}

			chains[i] = chain
		}()
	}

	wg.Wait()

	return chains
}
