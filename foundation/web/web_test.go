package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/landledger/foundation/web"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type payload struct {
	Name string `json:"name"`
}

func (p payload) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func Test_Handle(t *testing.T) {
	t.Log("Given the need to route requests through middleware.")
	{
		t.Logf("\tTest 0:\tWhen handling a request with a parameter.")
		{
			var order []string
			mw := func(name string) web.Middleware {
				return func(handler web.Handler) web.Handler {
					return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
						order = append(order, name)
						return handler(ctx, w, r)
					}
				}
			}

			app := web.NewApp(make(chan os.Signal, 1), mw("app"))
			h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				if web.GetTraceID(ctx) == "" {
					return errors.New("missing trace id")
				}
				return web.Respond(ctx, w, map[string]string{"token": web.Param(r, "token")}, http.StatusOK)
			}
			app.Handle(http.MethodGet, "v1", "/tokens/:token", h, mw("route"))

			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/tokens/T1", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 0:\tShould get a 200 status: got %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 0:\tShould get a 200 status.", success)

			if !strings.Contains(w.Body.String(), `"token":"T1"`) {
				t.Fatalf("\t%s\tTest 0:\tShould see the parameter in the response: %s", failed, w.Body.String())
			}
			t.Logf("\t%s\tTest 0:\tShould see the parameter in the response.", success)

			if len(order) != 2 || order[0] != "app" || order[1] != "route" {
				t.Fatalf("\t%s\tTest 0:\tShould run app middleware before route middleware: %v", failed, order)
			}
			t.Logf("\t%s\tTest 0:\tShould run app middleware before route middleware.", success)
		}

		t.Logf("\tTest 1:\tWhen a handler reports a shutdown error.")
		{
			shutdown := make(chan os.Signal, 1)
			app := web.NewApp(shutdown)
			h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return web.NewShutdownError("integrity failure")
			}
			app.Handle(http.MethodGet, "", "/fail", h)

			app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

			select {
			case <-shutdown:
				t.Logf("\t%s\tTest 1:\tShould signal shutdown.", success)
			default:
				t.Fatalf("\t%s\tTest 1:\tShould signal shutdown.", failed)
			}
		}
	}
}

func Test_Decode(t *testing.T) {
	t.Log("Given the need to decode request bodies.")
	{
		t.Logf("\tTest 0:\tWhen decoding valid and invalid documents.")
		{
			var p payload
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"bill"}`))
			if err := web.Decode(r, &p); err != nil || p.Name != "bill" {
				t.Fatalf("\t%s\tTest 0:\tShould decode a valid document: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould decode a valid document.", success)

			r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"bill","extra":1}`))
			if err := web.Decode(r, &p); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject unknown fields.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject unknown fields.", success)

			r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
			if err := web.Decode(r, &payload{}); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould run the Validate method.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould run the Validate method.", success)
		}
	}
}
