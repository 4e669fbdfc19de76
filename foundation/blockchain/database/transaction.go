package database

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ardanlabs/landledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// SystemAddress is the sender used for currency minted by the ledger itself.
const SystemAddress = "0"

// RewardSignature marks a system transaction. It is never checked
// cryptographically and is only valid with the system sender.
const RewardSignature = "reward"

// =============================================================================

// Tx is the transactional information between two parties. Fields are
// declared in key-sorted order since the JSON form is what gets signed.
type Tx struct {
	Data      TxData `json:"data"`      // Tagged payload describing the state change.
	Recipient string `json:"recipient"` // Account the change is directed at.
	Sender    string `json:"sender"`    // Account issuing the change, "0" for the system.
}

// NewTx constructs a new transaction.
func NewTx(sender string, recipient string, payload Payload) Tx {
	return Tx{
		Data:      NewTxData(payload),
		Recipient: recipient,
		Sender:    sender,
	}
}

// Key returns the canonical identity of the transaction. Two transactions
// with the same content have the same key regardless of the signature.
func (tx Tx) Key() string {
	return signature.Hash(tx)
}

// Sign uses the specified private key to sign the transaction. The key must
// belong to the sender.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {
	from := signature.PublicKeyToAddress(privateKey.PublicKey)
	if from != tx.Sender {
		return SignedTx{}, fmt.Errorf("%w: key for %s cannot sign for sender %s", ErrBadSignature, from, tx.Sender)
	}

	sig, err := signature.Sign(tx, privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	stx := SignedTx{
		Signature:   sig,
		Transaction: tx,
	}

	return stx, nil
}

// Validate checks the transaction is well formed.
func (tx Tx) Validate() error {
	if err := tx.Data.Validate(); err != nil {
		return err
	}

	if tx.Sender != SystemAddress && !signature.IsAddress(tx.Sender) {
		return fmt.Errorf("%w: invalid sender %q", ErrInvalidTransaction, tx.Sender)
	}

	if tx.Sender == SystemAddress && !tx.Data.Type.IsSystem() {
		return fmt.Errorf("%w: system cannot issue %s", ErrUnauthorized, tx.Data.Type)
	}

	if tx.Sender != SystemAddress && tx.Data.Type.IsSystem() {
		return fmt.Errorf("%w: only the system can issue %s", ErrUnauthorized, tx.Data.Type)
	}

	switch tx.Data.Type {
	case TxMiningReward, TxFaucet, TxTransferCurrency, TxRegisterNotary, TxCertifyIdentity, TxMintToken:
		if !signature.IsAddress(tx.Recipient) {
			return fmt.Errorf("%w: invalid recipient %q", ErrInvalidTransaction, tx.Recipient)
		}
	default:
		if tx.Recipient != SystemAddress && !signature.IsAddress(tx.Recipient) {
			return fmt.Errorf("%w: invalid recipient %q", ErrInvalidTransaction, tx.Recipient)
		}
	}

	return nil
}

// =============================================================================

// SignedTx is a transaction with the signature of its sender attached.
type SignedTx struct {
	Signature   string `json:"signature"`
	Transaction Tx     `json:"transaction"`
}

// NewSystemTx constructs a transaction issued by the ledger itself.
func NewSystemTx(recipient string, payload Payload) SignedTx {
	return SignedTx{
		Signature:   RewardSignature,
		Transaction: NewTx(SystemAddress, recipient, payload),
	}
}

// IsSystem reports whether the transaction is issued by the ledger.
func (stx SignedTx) IsSystem() bool {
	return stx.Transaction.Sender == SystemAddress
}

// Validate checks the transaction is well formed and the signature belongs
// to the sender. The reward marker is only accepted for the system sender.
func (stx SignedTx) Validate() error {
	if err := stx.Transaction.Validate(); err != nil {
		return err
	}

	if stx.IsSystem() {
		if stx.Signature != RewardSignature {
			return fmt.Errorf("%w: system transaction must carry the reward marker", ErrBadSignature)
		}
		return nil
	}

	if stx.Signature == RewardSignature {
		return fmt.Errorf("%w: reward marker used by %s", ErrBadSignature, stx.Transaction.Sender)
	}

	if err := signature.Verify(stx.Transaction.Sender, stx.Transaction, stx.Signature); err != nil {
		return fmt.Errorf("%w: %s", ErrBadSignature, err)
	}

	return nil
}

// =============================================================================

// GenerateKey creates a new private key for an account.
func GenerateKey() (*ecdsa.PrivateKey, string, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, "", err
	}

	return privateKey, signature.PublicKeyToAddress(privateKey.PublicKey), nil
}
