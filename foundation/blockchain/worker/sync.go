package worker

import (
	"context"
)

// syncOperations reconciles the chain with the known peers on every tick and
// whenever a sync is signaled.
func (w *Worker) syncOperations() {
	w.evHandler("worker: syncOperations: G started")
	defer w.evHandler("worker: syncOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.startSync:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.shut:
			w.evHandler("worker: syncOperations: received shut signal")
			return
		}
	}
}

// Sync reconciles the chain with the known peers.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	adopted, err := w.state.Reconcile(context.Background())
	if err != nil {
		w.evHandler("worker: sync: ERROR: %s", err)
	}

	if adopted {
		w.evHandler("worker: sync: adopted chain: length[%d]", w.state.RetrieveLatestBlock().Index)
	}
}
