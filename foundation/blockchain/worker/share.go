package worker

import (
	"context"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
)

// shareBlockOperations handles sharing newly sealed blocks.
func (w *Worker) shareBlockOperations() {
	w.evHandler("worker: shareBlockOperations: G started")
	defer w.evHandler("worker: shareBlockOperations: G completed")

	for {
		select {
		case block := <-w.blockSharing:
			if !w.isShutdown() {
				w.runShareBlockOperation(block)
			}
		case <-w.shut:
			w.evHandler("worker: shareBlockOperations: received shut signal")
			return
		}
	}
}

// runShareBlockOperation proposes the block to the known peers.
func (w *Worker) runShareBlockOperation(block database.Block) {
	w.evHandler("worker: runShareBlockOperation: started: blk[%d]", block.Index)
	defer w.evHandler("worker: runShareBlockOperation: completed")

	if err := w.state.NetSendBlockToPeers(context.Background(), block); err != nil {
		w.evHandler("worker: runShareBlockOperation: WARNING: %s", err)
	}
}
