// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// signatureLength is the size of an [R|S] signature without the recovery id.
const signatureLength = 64

// addressLength is the size of a compressed secp256k1 public key.
const addressLength = 33

// =============================================================================

// Canonical returns the bytes that are hashed and signed for the value. Struct
// fields are emitted in declaration order and map keys are sorted, so the
// encoding does not vary between runs or nodes.
func Canonical(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Hash returns a unique string for the value.
func Hash(value any) string {
	data, err := Canonical(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// PublicKeyToAddress converts the public key to the address format used on
// the ledger, the hex encoded compressed public key.
func PublicKeyToAddress(pk ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.CompressPubkey(&pk))
}

// IsAddress validates the string is a hex encoded compressed public key that
// sits on the curve.
func IsAddress(address string) bool {
	pub, err := hexutil.Decode(address)
	if err != nil || len(pub) != addressLength {
		return false
	}

	if _, err := crypto.DecompressPubkey(pub); err != nil {
		return false
	}

	return true
}

// Sign uses the specified private key to sign the data.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	// The recovery id is not part of the ledger format since the sender's
	// public key travels with the transaction.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.CompressPubkey(&privateKey.PublicKey), data, rs) {
		return "", errors.New("invalid signature")
	}

	return hexutil.Encode(rs), nil
}

// Verify checks the signature was produced over the value by the private key
// that belongs to the specified address.
func Verify(address string, value any, sig string) error {
	pub, err := hexutil.Decode(address)
	if err != nil || len(pub) != addressLength {
		return fmt.Errorf("invalid address %q", address)
	}

	rs, err := hexutil.Decode(sig)
	if err != nil {
		return fmt.Errorf("decoding signature: %w", err)
	}

	if len(rs) != signatureLength {
		return fmt.Errorf("invalid signature length %d", len(rs))
	}

	data, err := stamp(value)
	if err != nil {
		return err
	}

	if !crypto.VerifySignature(pub, data, rs) {
		return errors.New("signature does not match address")
	}

	return nil
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with
// the ledger stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {

	// Marshal the data.
	v, err := Canonical(value)
	if err != nil {
		return nil, err
	}

	// Hash the data into a 32 byte array. This will provide
	// a data length consistency with all data.
	txHash := sha256.Sum256(v)

	// This stamp is used so signatures we produce when signing data
	// are always unique to the land ledger.
	stamp := []byte("\x19Land Ledger Signed Message:\n32")

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the data.
	data := sha256.Sum256(append(stamp, txHash[:]...))

	return data[:], nil
}
