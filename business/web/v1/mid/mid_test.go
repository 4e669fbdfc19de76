package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/landledger/business/sys/validate"
	v1 "github.com/ardanlabs/landledger/business/web/v1"
	"github.com/ardanlabs/landledger/business/web/v1/mid"
	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/web"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Errors(t *testing.T) {
	type table struct {
		name    string
		handler web.Handler
		status  int
		fields  bool
	}

	tt := []table{
		{
			name: "request",
			handler: func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return v1.NewRequestError(database.ErrInsufficientFunds, v1.StatusFor(database.ErrInsufficientFunds))
			},
			status: http.StatusBadRequest,
		},
		{
			name: "unauthorized",
			handler: func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return v1.NewRequestError(database.ErrUnauthorized, v1.StatusFor(database.ErrUnauthorized))
			},
			status: http.StatusForbidden,
		},
		{
			name: "fields",
			handler: func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return validate.FieldErrors{{Field: "token_id", Error: "token_id is a required field"}}
			},
			status: http.StatusBadRequest,
			fields: true,
		},
		{
			name: "unexpected",
			handler: func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return errors.New("boom")
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "panic",
			handler: func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				panic("boom")
			},
			status: http.StatusInternalServerError,
		},
	}

	log := zap.NewNop().Sugar()

	t.Log("Given the need to convert handler errors into responses.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen the handler fails with %s.", testID, tst.name)
				{
					app := web.NewApp(make(chan os.Signal, 1), mid.Logger(log), mid.Errors(log), mid.Metrics(), mid.Panics())
					app.Handle(http.MethodGet, "v1", "/fail", tst.handler)

					w := httptest.NewRecorder()
					app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/fail", nil))

					if w.Code != tst.status {
						t.Fatalf("\t%s\tTest %d:\tShould get status %d: got %d", failed, testID, tst.status, w.Code)
					}
					t.Logf("\t%s\tTest %d:\tShould get status %d.", success, testID, tst.status)

					var er v1.ErrorResponse
					if err := json.NewDecoder(w.Body).Decode(&er); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould decode the error response: %v", failed, testID, err)
					}
					if er.Error == "" || (tst.fields && len(er.Fields) == 0) {
						t.Fatalf("\t%s\tTest %d:\tShould describe the failure: %+v", failed, testID, er)
					}
					t.Logf("\t%s\tTest %d:\tShould describe the failure.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Cors(t *testing.T) {
	t.Log("Given the need to answer cross origin requests.")
	{
		t.Logf("\tTest 0:\tWhen a preflight request arrives.")
		{
			app := web.NewApp(make(chan os.Signal, 1))
			h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return errors.New("should not be called")
			}
			app.Handle(http.MethodOptions, "", "/*", h, mid.Cors("*"))

			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/v1/tx/submit", nil))

			if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Fatalf("\t%s\tTest 0:\tShould answer the preflight: %d %v", failed, w.Code, w.Header())
			}
			t.Logf("\t%s\tTest 0:\tShould answer the preflight.", success)
		}
	}
}
