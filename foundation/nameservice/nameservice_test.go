package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/landledger/foundation/blockchain/signature"
	"github.com/ardanlabs/landledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_NameService(t *testing.T) {
	t.Log("Given the need to name addresses from key files.")
	{
		t.Logf("\tTest 0:\tWhen a folder holds a government key.")
		{
			dir := t.TempDir()

			pk, err := crypto.GenerateKey()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould generate a key: %v", failed, err)
			}
			if err := crypto.SaveECDSA(filepath.Join(dir, "government.ecdsa"), pk); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould save the key: %v", failed, err)
			}

			ns, err := nameservice.New(dir)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould load the folder: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould load the folder.", success)

			address := signature.PublicKeyToAddress(pk.PublicKey)
			if got := ns.Lookup(address); got != "government" {
				t.Fatalf("\t%s\tTest 0:\tShould name the address: got %q", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould name the address.", success)

			if got := ns.Lookup("0x02ff"); got != "0x02ff" {
				t.Fatalf("\t%s\tTest 0:\tShould return unknown addresses unchanged: got %q", failed, got)
			}
			if got := ns.Lookup("0"); got != "system" {
				t.Fatalf("\t%s\tTest 0:\tShould name the system address: got %q", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould fall back for unknown addresses.", success)

			if len(ns.Copy()) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould hold one name.", failed)
			}
		}

		t.Logf("\tTest 1:\tWhen the folder does not exist.")
		{
			ns, err := nameservice.New(filepath.Join(t.TempDir(), "missing"))
			if err != nil || len(ns.Copy()) != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould yield an empty name service: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould yield an empty name service.", success)
		}
	}
}
