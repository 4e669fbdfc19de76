// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/landledger/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/landledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/landledger/foundation/blockchain/state"
	"github.com/ardanlabs/landledger/foundation/events"
	"github.com/ardanlabs/landledger/foundation/nameservice"
	"github.com/ardanlabs/landledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/state", pbl.WorldState)
	app.Handle(http.MethodGet, version, "/balances/list", pbl.Balances)
	app.Handle(http.MethodGet, version, "/balances/list/:account", pbl.Balances)
	app.Handle(http.MethodGet, version, "/tokens/list", pbl.Tokens)
	app.Handle(http.MethodGet, version, "/tokens/list/:account", pbl.Tokens)
	app.Handle(http.MethodGet, version, "/tokens/:token/history", pbl.TokenHistory)
	app.Handle(http.MethodGet, version, "/contracts/list", pbl.Contracts)
	app.Handle(http.MethodGet, version, "/requests/list", pbl.SaleRequests)
	app.Handle(http.MethodGet, version, "/receipts/list", pbl.TaxReceipts)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list/:account", pbl.Mempool)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
	app.Handle(http.MethodPost, version, "/faucet", pbl.Faucet)
	app.Handle(http.MethodPost, version, "/block/seal", pbl.SealBlock)
	app.Handle(http.MethodPost, version, "/sync", pbl.Sync)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/chain", prv.Chain)
	app.Handle(http.MethodPost, version, "/node/block/propose", prv.ProposeBlock)
	app.Handle(http.MethodPost, version, "/node/peers", prv.SubmitPeer)
	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/block/list/:from/:to", prv.BlocksByNumber)
	app.Handle(http.MethodGet, version, "/node/tx/list", prv.Mempool)
}
