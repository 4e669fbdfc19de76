package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// TxType identifies the kind of state change a transaction requests.
type TxType string

// Set of transaction types the ledger understands. Anything else is rejected
// when the transaction is decoded.
const (
	TxMiningReward        TxType = "MINING_REWARD"
	TxFaucet              TxType = "FAUCET"
	TxTransferCurrency    TxType = "TRANSFER_CURRENCY"
	TxRegisterNotary      TxType = "REGISTER_NOTARY"
	TxCertifyIdentity     TxType = "CERTIFY_IDENTITY"
	TxMintToken           TxType = "MINT_TOKEN"
	TxRequestSaleApproval TxType = "REQUEST_SALE_APPROVAL"
	TxApproveSale         TxType = "APPROVE_SALE"
	TxRejectSale          TxType = "REJECT_SALE"
	TxExecuteSaleContract TxType = "EXECUTE_SALE_CONTRACT"
)

// IsSystem reports whether the type can only be issued by the system address.
func (t TxType) IsSystem() bool {
	return t == TxMiningReward || t == TxFaucet
}

// =============================================================================

// Payload is the closed set of transaction bodies. The unexported method keeps
// other packages from adding variants.
//
// Fields in every payload are declared in key-sorted order since the JSON
// encoding of the payload is part of the signed and hashed bytes.
type Payload interface {
	TxType() TxType
	validate() error
}

// MiningReward credits the sealer of a block.
type MiningReward struct{}

// Faucet credits an account with test currency.
type Faucet struct{}

// TransferCurrency moves currency from the sender to the recipient. A
// transfer carrying a reference takes effect at most once per chain.
type TransferCurrency struct {
	Amount    uint64 `json:"amount"`
	Reference string `json:"reference,omitempty"`
}

// RegisterNotary authorizes the recipient as a notary for a locality.
type RegisterNotary struct {
	Locality string `json:"locality"`
}

// CertifyIdentity records the recipient as a certified identity.
type CertifyIdentity struct{}

// MintToken registers a new asset owned by the recipient.
type MintToken struct {
	Area        uint64 `json:"area"`
	AssetType   string `json:"asset_type"`
	DetailsHash string `json:"details_hash"`
	Locality    string `json:"locality"`
	TokenID     string `json:"token_id"`
}

// RequestSaleApproval asks a notary to approve the sale of a token.
type RequestSaleApproval struct {
	Price     uint64 `json:"price"`
	RequestID string `json:"request_id"`
	TokenID   string `json:"token_id"`
}

// ApproveSale approves a pending request and opens a sale contract.
type ApproveSale struct {
	ContractID string  `json:"contract_id"`
	RequestID  string  `json:"request_id"`
	ValidUntil float64 `json:"valid_until"`
}

// RejectSale rejects a pending request.
type RejectSale struct {
	Reason    string `json:"reason"`
	RequestID string `json:"request_id"`
}

// ExecuteSaleContract buys the token behind an open contract.
type ExecuteSaleContract struct {
	ContractID string `json:"contract_id"`
}

func (MiningReward) TxType() TxType        { return TxMiningReward }
func (Faucet) TxType() TxType              { return TxFaucet }
func (TransferCurrency) TxType() TxType    { return TxTransferCurrency }
func (RegisterNotary) TxType() TxType      { return TxRegisterNotary }
func (CertifyIdentity) TxType() TxType     { return TxCertifyIdentity }
func (MintToken) TxType() TxType           { return TxMintToken }
func (RequestSaleApproval) TxType() TxType { return TxRequestSaleApproval }
func (ApproveSale) TxType() TxType         { return TxApproveSale }
func (RejectSale) TxType() TxType          { return TxRejectSale }
func (ExecuteSaleContract) TxType() TxType { return TxExecuteSaleContract }

func (MiningReward) validate() error    { return nil }
func (Faucet) validate() error          { return nil }
func (CertifyIdentity) validate() error { return nil }

func (p TransferCurrency) validate() error {
	if p.Amount == 0 {
		return errors.New("amount must be greater than zero")
	}
	return nil
}

func (p RegisterNotary) validate() error {
	if p.Locality == "" {
		return errors.New("locality is required")
	}
	return nil
}

func (p MintToken) validate() error {
	switch {
	case p.TokenID == "":
		return errors.New("token id is required")
	case p.Locality == "":
		return errors.New("locality is required")
	}
	return nil
}

func (p RequestSaleApproval) validate() error {
	switch {
	case p.RequestID == "":
		return errors.New("request id is required")
	case p.TokenID == "":
		return errors.New("token id is required")
	case p.Price == 0:
		return errors.New("price must be greater than zero")
	}
	return nil
}

func (p ApproveSale) validate() error {
	switch {
	case p.RequestID == "":
		return errors.New("request id is required")
	case p.ContractID == "":
		return errors.New("contract id is required")
	case p.ValidUntil <= 0:
		return errors.New("valid until is required")
	}
	return nil
}

func (p RejectSale) validate() error {
	if p.RequestID == "" {
		return errors.New("request id is required")
	}
	return nil
}

func (p ExecuteSaleContract) validate() error {
	if p.ContractID == "" {
		return errors.New("contract id is required")
	}
	return nil
}

// =============================================================================

// TxData is the tagged union carried by every transaction.
type TxData struct {
	Type    TxType
	Payload Payload
}

// NewTxData constructs the data for the specified payload.
func NewTxData(payload Payload) TxData {
	return TxData{
		Type:    payload.TxType(),
		Payload: payload,
	}
}

// Validate checks the type tag matches the payload and the payload is
// well formed.
func (d TxData) Validate() error {
	if d.Payload == nil {
		return fmt.Errorf("%w: missing payload for %q", ErrInvalidTransaction, d.Type)
	}

	if d.Payload.TxType() != d.Type {
		return fmt.Errorf("%w: payload %q does not match type %q", ErrInvalidTransaction, d.Payload.TxType(), d.Type)
	}

	if err := d.Payload.validate(); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrInvalidTransaction, d.Type, err)
	}

	return nil
}

// wireData is the JSON form of TxData with keys in sorted order.
type wireData struct {
	Payload json.RawMessage `json:"payload"`
	Type    TxType          `json:"type"`
}

// MarshalJSON implements the json.Marshaler interface.
func (d TxData) MarshalJSON() ([]byte, error) {
	payload := d.Payload
	if payload == nil {
		return nil, fmt.Errorf("missing payload for %q", d.Type)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(wireData{Payload: raw, Type: d.Type})
}

// UnmarshalJSON implements the json.Unmarshaler interface. Unknown types and
// payload fields that do not belong to the type are rejected here so nothing
// downstream has to deal with them.
func (d *TxData) UnmarshalJSON(data []byte) error {
	var wd wireData
	if err := json.Unmarshal(data, &wd); err != nil {
		return err
	}

	var payload Payload
	var err error

	switch wd.Type {
	case TxMiningReward:
		payload, err = decodePayload[MiningReward](wd.Payload)
	case TxFaucet:
		payload, err = decodePayload[Faucet](wd.Payload)
	case TxTransferCurrency:
		payload, err = decodePayload[TransferCurrency](wd.Payload)
	case TxRegisterNotary:
		payload, err = decodePayload[RegisterNotary](wd.Payload)
	case TxCertifyIdentity:
		payload, err = decodePayload[CertifyIdentity](wd.Payload)
	case TxMintToken:
		payload, err = decodePayload[MintToken](wd.Payload)
	case TxRequestSaleApproval:
		payload, err = decodePayload[RequestSaleApproval](wd.Payload)
	case TxApproveSale:
		payload, err = decodePayload[ApproveSale](wd.Payload)
	case TxRejectSale:
		payload, err = decodePayload[RejectSale](wd.Payload)
	case TxExecuteSaleContract:
		payload, err = decodePayload[ExecuteSaleContract](wd.Payload)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, wd.Type)
	}

	if err != nil {
		return fmt.Errorf("%w: %s payload: %s", ErrInvalidTransaction, wd.Type, err)
	}

	d.Type = wd.Type
	d.Payload = payload

	return nil
}

// decodePayload decodes the raw payload into the concrete type. A missing
// payload decodes to the zero value.
func decodePayload[T Payload](raw json.RawMessage) (Payload, error) {
	var p T

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return p, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}

	return p, nil
}
