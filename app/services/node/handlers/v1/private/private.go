// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	v1 "github.com/ardanlabs/landledger/business/web/v1"
	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/peer"
	"github.com/ardanlabs/landledger/foundation/blockchain/state"
	"github.com/ardanlabs/landledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Chain returns the full local chain so a peer can reconcile against it.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain := h.State.RetrieveChain()

	resp := state.ChainResponse{
		Chain:  chain,
		Length: len(chain),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ProposeBlock takes a block received from a peer, validates it and
// if that passes, adds the block to the local chain. A rejected block is
// answered with 406 and the node reconciles with its peers.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var block database.Block
	if err := web.Decode(r, &block); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("propose block", "traceid", v.TraceID, "index", block.Index, "txs", len(block.Transactions))

	if err := h.State.ProcessProposedBlock(block); err != nil {
		if errors.Is(err, state.ErrPersistence) {
			return v1.NewRequestError(err, http.StatusInternalServerError)
		}
		return v1.NewRequestError(err, http.StatusNotAcceptable)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitPeer adds a peer to the known peer list.
func (h Handlers) SubmitPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	pr = peer.New(pr.Host)
	if pr.Host == "" {
		return v1.NewRequestError(errors.New("host is required"), http.StatusBadRequest)
	}

	if !h.State.AddKnownPeer(pr) {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	h.Log.Infow("add peer", "traceid", web.GetTraceID(ctx), "host", pr.Host)

	return web.Respond(ctx, w, h.State.RetrieveKnownPeers(), http.StatusOK)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveStatus(), http.StatusOK)
}

// BlocksByNumber returns all the blocks based on the specified to/from values.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := index(web.Param(r, "from"))
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}
	to, err := index(web.Param(r, "to"))
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	if from > to {
		return v1.NewRequestError(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks, err := h.State.QueryBlocksByNumber(from, to)
	if err != nil {
		return v1.NewRequestError(err, v1.StatusFor(err))
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

func index(s string) (uint64, error) {
	if s == "latest" || s == "" {
		return state.QueryLatest, nil
	}

	return strconv.ParseUint(s, 10, 64)
}
