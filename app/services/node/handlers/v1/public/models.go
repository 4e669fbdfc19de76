package public

import (
	"fmt"

	"github.com/ardanlabs/landledger/business/sys/validate"
	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/signature"
)

type tx struct {
	Key           string           `json:"key"`
	Type          database.TxType  `json:"type"`
	Sender        string           `json:"sender"`
	SenderName    string           `json:"sender_name"`
	Recipient     string           `json:"recipient"`
	RecipientName string           `json:"recipient_name"`
	Payload       database.Payload `json:"payload"`
	Signature     string           `json:"signature"`
}

type block struct {
	Index        uint64  `json:"index"`
	Hash         string  `json:"hash"`
	PreviousHash string  `json:"previous_hash"`
	Proof        uint64  `json:"proof"`
	Timestamp    float64 `json:"timestamp"`
	Transactions []tx    `json:"transactions"`
}

type balance struct {
	Account string `json:"account"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []balance `json:"balances"`
}

type worldView struct {
	LatestBlock string          `json:"latest_block"`
	Length      int             `json:"length"`
	Uncommitted int             `json:"uncommitted"`
	SyncStatus  string          `json:"sync_status"`
	World       *database.World `json:"world"`
}

type submitted struct {
	Status    string `json:"status"`
	Key       string `json:"key"`
	NextBlock uint64 `json:"next_block"`
}

type faucetRequest struct {
	Account string `json:"account" validate:"required"`
}

// Validate checks the request is for a ledger address.
func (fr faucetRequest) Validate() error {
	if err := validate.Check(fr); err != nil {
		return err
	}

	if !signature.IsAddress(fr.Account) {
		return validate.FieldErrors{{Field: "account", Error: fmt.Sprintf("account %q is not an address", fr.Account)}}
	}

	return nil
}
