// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/landledger/business/sys/metrics"
	v1 "github.com/ardanlabs/landledger/business/web/v1"
	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/state"
	"github.com/ardanlabs/landledger/foundation/events"
	"github.com/ardanlabs/landledger/foundation/nameservice"
	"github.com/ardanlabs/landledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints for wallets and viewers.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction validates a signed transaction and adds it to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var stx database.SignedTx
	if err := web.Decode(r, &stx); err != nil {
		metrics.AddAdmission(ctx, false)
		return v1.NewRequestError(err, v1.StatusFor(err))
	}

	h.Log.Infow("submit tx", "traceid", v.TraceID, "type", stx.Transaction.Data.Type, "sender", h.NS.Lookup(stx.Transaction.Sender), "recipient", h.NS.Lookup(stx.Transaction.Recipient))

	next, err := h.State.SubmitTransaction(stx)
	if err != nil {
		metrics.AddAdmission(ctx, false)
		return v1.NewRequestError(err, v1.StatusFor(err))
	}
	metrics.AddAdmission(ctx, true)

	resp := submitted{
		Status:    "transaction added to mempool",
		Key:       stx.Transaction.Key(),
		NextBlock: next,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Faucet credits the account with the faucet reward.
func (h Handlers) Faucet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var fr faucetRequest
	if err := web.Decode(r, &fr); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	stx := database.NewSystemTx(fr.Account, database.Faucet{})

	next, err := h.State.RequestFaucet(fr.Account)
	if err != nil {
		metrics.AddAdmission(ctx, false)
		return v1.NewRequestError(err, v1.StatusFor(err))
	}
	metrics.AddAdmission(ctx, true)

	resp := submitted{
		Status:    "faucet credit added to mempool",
		Key:       stx.Transaction.Key(),
		NextBlock: next,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SealBlock seals the mempool into a block right away and shares the block
// with the known peers.
func (h Handlers) SealBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk, err := h.State.SealBlock(ctx)
	if err != nil && !errors.Is(err, state.ErrPersistence) {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			return v1.NewRequestError(err, http.StatusBadRequest)
		case errors.Is(err, state.ErrStaleSeal):
			return v1.NewRequestError(err, http.StatusConflict)
		}
		return err
	}

	h.State.Worker.SignalShareBlock(blk)

	if err != nil {
		return v1.NewRequestError(err, http.StatusInternalServerError)
	}

	return web.Respond(ctx, w, h.toBlock(blk), http.StatusOK)
}

// Sync reconciles the chain with the known peers.
func (h Handlers) Sync(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	adopted, err := h.State.Reconcile(ctx)
	if err != nil {
		return v1.NewRequestError(err, v1.StatusFor(err))
	}

	resp := struct {
		Adopted bool   `json:"adopted"`
		Length  int    `json:"length"`
		Latest  string `json:"latest_block"`
	}{
		Adopted: adopted,
		Length:  len(h.State.RetrieveChain()),
		Latest:  h.State.RetrieveLatestBlock().Hash(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveGenesis(), http.StatusOK)
}

// WorldState returns the full world state with the chain summary.
func (h Handlers) WorldState(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := worldView{
		LatestBlock: h.State.RetrieveLatestBlock().Hash(),
		Length:      len(h.State.RetrieveChain()),
		Uncommitted: h.State.QueryMempoolLength(),
		SyncStatus:  string(h.State.RetrieveSyncStatus()),
		World:       h.State.RetrieveWorld(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balances returns the current balances for all accounts or one account.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBalances := h.State.QueryBalances(web.Param(r, "account"))

	bals := make([]balance, 0, len(dbBalances))
	for account, amount := range dbBalances {
		bals = append(bals, balance{
			Account: account,
			Name:    h.NS.Lookup(account),
			Balance: amount,
		})
	}
	slices.SortFunc(bals, func(a, b balance) int { return strings.Compare(a.Account, b.Account) })

	resp := balances{
		LatestBlock: h.State.RetrieveLatestBlock().Hash(),
		Uncommitted: h.State.QueryMempoolLength(),
		Balances:    bals,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Tokens returns every token or the tokens owned by one account.
func (h Handlers) Tokens(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryTokens(web.Param(r, "account")), http.StatusOK)
}

// TokenHistory returns the provenance of a token in chain order.
func (h Handlers) TokenHistory(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	history, err := h.State.QueryTokenHistory(web.Param(r, "token"))
	if err != nil {
		return v1.NewRequestError(err, v1.StatusFor(err))
	}

	return web.Respond(ctx, w, history, http.StatusOK)
}

// Contracts returns the sale contracts.
func (h Handlers) Contracts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryContracts(), http.StatusOK)
}

// SaleRequests returns the sale requests.
func (h Handlers) SaleRequests(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QuerySaleRequests(), http.StatusOK)
}

// TaxReceipts returns the tax receipts in settlement order.
func (h Handlers) TaxReceipts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryTaxReceipts(), http.StatusOK)
}

// Blocks returns the blocks of the chain. The optional from and to query
// values bound the range.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := queryIndex(r, "from", database.GenesisIndex)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}
	to, err := queryIndex(r, "to", state.QueryLatest)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	dbBlocks, err := h.State.QueryBlocksByNumber(from, to)
	if err != nil {
		return v1.NewRequestError(err, v1.StatusFor(err))
	}

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = h.toBlock(blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions, optionally only
// those sent by or to one account.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct := web.Param(r, "account")

	mempool := h.State.RetrieveMempool()

	trans := make([]tx, 0, len(mempool))
	for _, stx := range mempool {
		if acct != "" && acct != stx.Transaction.Sender && acct != stx.Transaction.Recipient {
			continue
		}
		trans = append(trans, h.toTx(stx))
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// =============================================================================

func (h Handlers) toTx(stx database.SignedTx) tx {
	return tx{
		Key:           stx.Transaction.Key(),
		Type:          stx.Transaction.Data.Type,
		Sender:        stx.Transaction.Sender,
		SenderName:    h.NS.Lookup(stx.Transaction.Sender),
		Recipient:     stx.Transaction.Recipient,
		RecipientName: h.NS.Lookup(stx.Transaction.Recipient),
		Payload:       stx.Transaction.Data.Payload,
		Signature:     stx.Signature,
	}
}

func (h Handlers) toBlock(blk database.Block) block {
	trans := make([]tx, len(blk.Transactions))
	for i, stx := range blk.Transactions {
		trans[i] = h.toTx(stx)
	}

	return block{
		Index:        blk.Index,
		Hash:         blk.Hash(),
		PreviousHash: blk.PreviousHash,
		Proof:        blk.Proof,
		Timestamp:    blk.Timestamp,
		Transactions: trans,
	}
}

func queryIndex(r *http.Request, name string, def uint64) (uint64, error) {
	s := r.URL.Query().Get(name)
	switch s {
	case "":
		return def, nil
	case "latest":
		return state.QueryLatest, nil
	}

	return strconv.ParseUint(s, 10, 64)
}
