package genesis_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/landledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

func Test_SaveLoad(t *testing.T) {
	gov, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}
	tax, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}

	gen := genesis.New(signature.PublicKeyToAddress(gov.PublicKey), signature.PublicKeyToAddress(tax.PublicKey))

	path := filepath.Join(t.TempDir(), "zblock", "genesis.json")
	if err := genesis.Save(path, gen); err != nil {
		t.Fatalf("Should be able to save the genesis: %s", err)
	}

	got, err := genesis.Load(path)
	if err != nil {
		t.Fatalf("Should be able to load the genesis: %s", err)
	}

	if got.Government != gen.Government || got.TaxAuthority != gen.TaxAuthority {
		t.Fatalf("Should get back the same authorities.")
	}

	if got.TaxRateBPS != genesis.DefaultTaxRateBPS || got.Difficulty != genesis.DefaultDifficulty {
		t.Fatalf("Should get back the default constants, got %+v", got)
	}
}

func Test_Validate(t *testing.T) {
	gen := genesis.New("0", "0")
	if err := gen.Validate(); err == nil {
		t.Fatalf("Should reject the system address as government.")
	}
}
