package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/ardanlabs/landledger/app/services/node/handlers"
	v1 "github.com/ardanlabs/landledger/business/web/v1"
	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/landledger/foundation/blockchain/peer"
	"github.com/ardanlabs/landledger/foundation/blockchain/state"
	"github.com/ardanlabs/landledger/foundation/events"
	"github.com/ardanlabs/landledger/foundation/nameservice"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type node struct {
	state   *state.State
	public  *httptest.Server
	private *httptest.Server
}

func startNode(t *testing.T, gen genesis.Genesis, peers ...string) node {
	_, beneficiary, err := database.GenerateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	st, err := state.New(state.Config{
		BeneficiaryID: beneficiary,
		Host:          "local",
		Genesis:       gen,
		Storage:       memory.New(),
		KnownPeers:    peer.NewPeerSet(peers...),
		Transport:     state.NewHTTPTransport(nil, 0),
		PeerTimeout:   time.Second,
		EvHandler:     func(v string, args ...any) { t.Logf(v, args...) },
	})
	if err != nil {
		t.Fatalf("starting node: %v", err)
	}

	ns, err := nameservice.New(t.TempDir())
	if err != nil {
		t.Fatalf("name service: %v", err)
	}

	cfg := handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	}

	n := node{
		state:   st,
		public:  httptest.NewServer(handlers.PublicMux(cfg)),
		private: httptest.NewServer(handlers.PrivateMux(cfg)),
	}
	t.Cleanup(func() {
		n.public.Close()
		n.private.Close()
	})

	return n
}

func call(t *testing.T, method string, url string, body any, dataRecv any) int {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("calling %s: %v", url, err)
	}
	defer resp.Body.Close()

	if dataRecv != nil {
		json.NewDecoder(resp.Body).Decode(dataRecv)
	}

	return resp.StatusCode
}

func Test_API(t *testing.T) {
	_, gov, err := database.GenerateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	_, tax, err := database.GenerateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	gen := genesis.New(gov, tax)
	gen.Date = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	gen.Difficulty = 2

	aliceKey, alice, err := database.GenerateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	_, bob, err := database.GenerateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	a := startNode(t, gen)

	t.Log("Given the need to drive the ledger through the public API.")
	{
		t.Logf("\tTest 0:\tWhen requesting faucet funds and sealing.")
		{
			if code := call(t, http.MethodPost, a.public.URL+"/v1/block/seal", nil, nil); code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 0:\tShould refuse to seal an empty mempool: got %d", failed, code)
			}
			t.Logf("\t%s\tTest 0:\tShould refuse to seal an empty mempool.", success)

			req := map[string]string{"account": alice}
			if code := call(t, http.MethodPost, a.public.URL+"/v1/faucet", req, nil); code != http.StatusOK {
				t.Fatalf("\t%s\tTest 0:\tShould accept the faucet request: got %d", failed, code)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the faucet request.", success)

			var blk struct {
				Index uint64 `json:"index"`
			}
			if code := call(t, http.MethodPost, a.public.URL+"/v1/block/seal", nil, &blk); code != http.StatusOK || blk.Index != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould seal block 2: got %d %d", failed, code, blk.Index)
			}
			t.Logf("\t%s\tTest 0:\tShould seal block 2.", success)

			var bals struct {
				Balances []struct {
					Account string `json:"account"`
					Balance uint64 `json:"balance"`
				} `json:"balances"`
			}
			call(t, http.MethodGet, a.public.URL+"/v1/balances/list/"+alice, nil, &bals)
			if len(bals.Balances) != 1 || bals.Balances[0].Balance != gen.FaucetReward {
				t.Fatalf("\t%s\tTest 0:\tShould credit the faucet reward: got %+v", failed, bals)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the faucet reward.", success)
		}

		t.Logf("\tTest 1:\tWhen submitting bad requests.")
		{
			var er v1.ErrorResponse
			if code := call(t, http.MethodPost, a.public.URL+"/v1/faucet", map[string]string{"account": "nobody"}, &er); code != http.StatusBadRequest || er.Fields["account"] == "" {
				t.Fatalf("\t%s\tTest 1:\tShould reject a bad faucet account: got %d %+v", failed, code, er)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a bad faucet account.", success)

			stx, err := database.NewTx(alice, bob, database.TransferCurrency{Amount: 10}).Sign(aliceKey)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould sign the transfer: %v", failed, err)
			}
			stx.Transaction.Data = database.NewTxData(database.TransferCurrency{Amount: 20})
			if code := call(t, http.MethodPost, a.public.URL+"/v1/tx/submit", stx, nil); code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 1:\tShould reject a tampered transaction: got %d", failed, code)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a tampered transaction.", success)

			if code := call(t, http.MethodGet, a.public.URL+"/v1/tokens/T9/history", nil, nil); code != http.StatusNotFound {
				t.Fatalf("\t%s\tTest 1:\tShould not find an unknown token: got %d", failed, code)
			}
			t.Logf("\t%s\tTest 1:\tShould not find an unknown token.", success)
		}

		t.Logf("\tTest 2:\tWhen a valid transfer is submitted.")
		{
			stx, err := database.NewTx(alice, bob, database.TransferCurrency{Amount: 10}).Sign(aliceKey)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould sign the transfer: %v", failed, err)
			}

			if code := call(t, http.MethodPost, a.public.URL+"/v1/tx/submit", stx, nil); code != http.StatusOK {
				t.Fatalf("\t%s\tTest 2:\tShould admit the transfer: got %d", failed, code)
			}
			if code := call(t, http.MethodPost, a.public.URL+"/v1/tx/submit", stx, nil); code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 2:\tShould reject the same transfer twice: got %d", failed, code)
			}
			t.Logf("\t%s\tTest 2:\tShould admit the transfer once.", success)

			var pending []struct {
				Key string `json:"key"`
			}
			call(t, http.MethodGet, a.public.URL+"/v1/tx/uncommitted/list/"+bob, nil, &pending)
			if len(pending) != 1 || pending[0].Key != stx.Transaction.Key() {
				t.Fatalf("\t%s\tTest 2:\tShould list the pending transfer: got %+v", failed, pending)
			}
			t.Logf("\t%s\tTest 2:\tShould list the pending transfer.", success)
		}
	}

	t.Log("Given the need for nodes to talk over the private API.")
	{
		t.Logf("\tTest 0:\tWhen a new node reconciles with a longer peer.")
		{
			pu, err := url.Parse(a.private.URL)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould parse the peer url: %v", failed, err)
			}

			b := startNode(t, gen, pu.Host)

			adopted, err := b.state.Reconcile(context.Background())
			if err != nil || !adopted {
				t.Fatalf("\t%s\tTest 0:\tShould adopt the peer chain: %v %v", failed, adopted, err)
			}
			if got := b.state.RetrieveLatestBlock().Hash(); got != a.state.RetrieveLatestBlock().Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould share the peer head: got %s", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould adopt the peer chain.", success)
		}

		t.Logf("\tTest 1:\tWhen a peer proposes a block that does not link.")
		{
			latest := a.state.RetrieveLatestBlock()
			bad := latest
			bad.Index = latest.Index + 5

			var er v1.ErrorResponse
			if code := call(t, http.MethodPost, a.private.URL+"/v1/node/block/propose", bad, &er); code != http.StatusNotAcceptable {
				t.Fatalf("\t%s\tTest 1:\tShould answer 406: got %d", failed, code)
			}
			t.Logf("\t%s\tTest 1:\tShould answer 406.", success)

			var status peer.Status
			call(t, http.MethodGet, a.private.URL+"/v1/node/status", nil, &status)
			if status.Length != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould keep the local chain: got %d", failed, status.Length)
			}
			t.Logf("\t%s\tTest 1:\tShould keep the local chain.", success)
		}
	}
}
