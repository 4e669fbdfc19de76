package signature_test

import (
	"testing"

	"github.com/ardanlabs/landledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	otherKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	address := signature.PublicKeyToAddress(pk.PublicKey)

	if !signature.IsAddress(address) {
		t.Fatalf("Should produce a valid address: %s", address)
	}

	sig, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if err := signature.Verify(address, value, sig); err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}

	tampered := struct {
		Name string
	}{
		Name: "Jill",
	}
	if err := signature.Verify(address, tampered, sig); err == nil {
		t.Fatalf("Should not verify the signature over different data.")
	}

	other, err := crypto.HexToECDSA(otherKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	if err := signature.Verify(signature.PublicKeyToAddress(other.PublicKey), value, sig); err == nil {
		t.Fatalf("Should not verify the signature against another address.")
	}

	if err := signature.Verify(address, value, "reward"); err == nil {
		t.Fatalf("Should not verify a marker as a signature.")
	}
}

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}
	hash := "0x0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a"

	h := signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	h = signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}
}

func Test_Address(t *testing.T) {
	tt := []struct {
		name    string
		address string
		valid   bool
	}{
		{name: "system", address: "0", valid: false},
		{name: "empty", address: "", valid: false},
		{name: "eth", address: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", valid: false},
		{name: "zero", address: "0x000000000000000000000000000000000000000000000000000000000000000000", valid: false},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			if got := signature.IsAddress(tst.address); got != tst.valid {
				t.Fatalf("Test %s:\tShould get %v for %q, got %v.", tst.name, tst.valid, tst.address, got)
			}
		}

		t.Run(tst.name, f)
	}
}
