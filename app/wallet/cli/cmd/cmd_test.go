package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Submit(t *testing.T) {
	t.Log("Given the need to sign and submit wallet transactions.")
	{
		t.Logf("\tTest 0:\tWhen sending a transfer with a generated key.")
		{
			var got database.SignedTx
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/tx/submit" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				json.NewDecoder(r.Body).Decode(&got)
				json.NewEncoder(w).Encode(submitted{Status: "ok", Key: got.Transaction.Key(), NextBlock: 2})
			}))
			defer srv.Close()

			accountPath = t.TempDir()
			accountName = "alice"
			nodeURL = srv.URL

			if err := generateRun(generateCmd, nil); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould generate a key file: %v", failed, err)
			}
			if err := generateRun(generateCmd, nil); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould refuse to overwrite a key file.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould generate a key file once.", success)

			_, address, err := loadKey()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould load the key file: %v", failed, err)
			}

			_, bob, err := database.GenerateKey()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould generate a recipient: %v", failed, err)
			}

			sendTo, sendAmount, sendReference = bob, 25, ""
			if err := sendRun(sendCmd, nil); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould submit the transfer: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould submit the transfer.", success)

			if err := got.Validate(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould send a validly signed transaction: %v", failed, err)
			}
			if got.Transaction.Sender != address || got.Transaction.Recipient != bob {
				t.Fatalf("\t%s\tTest 0:\tShould send from the wallet to bob: %+v", failed, got.Transaction)
			}
			t.Logf("\t%s\tTest 0:\tShould send a validly signed transaction.", success)

			p, ok := got.Transaction.Data.Payload.(database.TransferCurrency)
			if !ok || p.Amount != 25 || p.Reference == "" {
				t.Fatalf("\t%s\tTest 0:\tShould carry the amount with a reference: %+v", failed, got.Transaction.Data)
			}
			t.Logf("\t%s\tTest 0:\tShould carry the amount with a reference.", success)
		}
	}
}
