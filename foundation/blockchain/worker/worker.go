// Package worker implements sealing, chain sync, and block sharing for
// the ledger.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/state"
)

// DefaultSyncInterval represents the interval of reconciling the chain with
// the known peers when none is configured.
const DefaultSyncInterval = time.Minute

// maxBlockShareRequests represents the max number of pending block share
// requests that can be outstanding before share requests are dropped.
const maxBlockShareRequests = 10

// =============================================================================

// Worker manages the background workflows for the node.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	ticker       *time.Ticker
	shut         chan struct{}
	startMining  chan bool
	cancelMining chan bool
	startSync    chan bool
	blockSharing chan database.Block
	evHandler    state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, syncInterval time.Duration, evHandler state.EventHandler) *Worker {
	if syncInterval <= 0 {
		syncInterval = DefaultSyncInterval
	}

	w := Worker{
		state:        st,
		ticker:       time.NewTicker(syncInterval),
		shut:         make(chan struct{}),
		startMining:  make(chan bool, 1),
		cancelMining: make(chan bool, 1),
		startSync:    make(chan bool, 1),
		blockSharing: make(chan database.Block, maxBlockShareRequests),
		evHandler:    evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.syncOperations,
		w.miningOperations,
		w.shareBlockOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: signal cancel mining")
	w.SignalCancelMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a sealing operation. If there is already a signal
// pending in the channel, just return since a sealing operation will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// SignalShareBlock signals a share block operation. If maxBlockShareRequests
// signals exist in the channel, the block won't be shared.
func (w *Worker) SignalShareBlock(block database.Block) {
	select {
	case w.blockSharing <- block:
		w.evHandler("worker: SignalShareBlock: share blk[%d] signaled", block.Index)
	default:
		w.evHandler("worker: SignalShareBlock: queue full, blk[%d] won't be shared", block.Index)
	}
}

// SignalSync signals a reconciliation with the known peers. If there is
// already a signal pending, a sync will happen anyway.
func (w *Worker) SignalSync() {
	select {
	case w.startSync <- true:
	default:
	}
	w.evHandler("worker: SignalSync: sync signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
