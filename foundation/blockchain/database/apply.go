package database

import (
	"errors"
	"fmt"
	"math/bits"
)

// Position identifies the block a transaction is evaluated in. The timestamp
// is the "now" used for contract expiry.
type Position struct {
	Index     uint64
	Timestamp float64
}

// PositionOf returns the position of the transactions in the block.
func PositionOf(block Block) Position {
	return Position{
		Index:     block.Index,
		Timestamp: block.Timestamp,
	}
}

// Apply performs the state change described by the transaction. Apply never
// fails a replay. When a rule does not hold the world is left untouched and
// the reason is returned so it can be logged. The one exception is an expired
// contract which is marked as EXPIRED and reported with ErrExpired.
//
// The signature is not checked here, chain validation does that.
func (w *World) Apply(block Block, stx SignedTx) error {
	at := PositionOf(block)
	tx := stx.Transaction

	if err := w.Check(at, tx); err != nil {
		if errors.Is(err, ErrExpired) {
			w.expireContract(at, tx)
		}
		return err
	}

	switch p := tx.Data.Payload.(type) {
	case MiningReward:
		w.Balances[tx.Recipient] += w.genesis.MiningReward

	case Faucet:
		w.Balances[tx.Recipient] += w.genesis.FaucetReward

	case TransferCurrency:
		w.Balances[tx.Sender] -= p.Amount
		w.Balances[tx.Recipient] += p.Amount

	case RegisterNotary:
		w.Notaries[tx.Recipient] = p.Locality

	case CertifyIdentity:
		w.CertifiedIdentities[tx.Recipient] = true

	case MintToken:
		w.mintToken(at, tx, p)

	case RequestSaleApproval:
		w.requestSale(at, tx, p)

	case ApproveSale:
		w.approveSale(at, tx, p)

	case RejectSale:
		w.rejectSale(at, tx, p)

	case ExecuteSaleContract:
		w.executeSale(at, tx, p)
	}

	if key, guarded := replayKey(tx); guarded {
		w.applied[key] = struct{}{}
	}

	return nil
}

// Check reports whether the transaction would take effect against the world
// at the specified position. The world is not changed. Admission and replay
// share these rules so a transaction admitted to the mempool is judged the
// same way once it is sealed.
func (w *World) Check(at Position, tx Tx) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	if key, guarded := replayKey(tx); guarded {
		if _, exists := w.applied[key]; exists {
			return fmt.Errorf("%w: transfer already on chain", ErrInvalidTransaction)
		}
	}

	switch p := tx.Data.Payload.(type) {
	case MiningReward:
		return w.checkCredit(tx.Recipient, w.genesis.MiningReward)

	case Faucet:
		return w.checkCredit(tx.Recipient, w.genesis.FaucetReward)

	case TransferCurrency:
		return w.checkTransfer(tx, p)

	case RegisterNotary:
		if tx.Sender != w.genesis.Government {
			return fmt.Errorf("%w: only the government can register notaries", ErrUnauthorized)
		}
		return nil

	case CertifyIdentity:
		if _, isNotary := w.IsNotary(tx.Sender); !isNotary {
			return fmt.Errorf("%w: %s is not a notary", ErrUnauthorized, tx.Sender)
		}
		return nil

	case MintToken:
		return w.checkMint(tx, p)

	case RequestSaleApproval:
		return w.checkRequestSale(tx, p)

	case ApproveSale:
		if err := w.checkReview(tx.Sender, p.RequestID); err != nil {
			return err
		}
		if _, exists := w.Contracts[p.ContractID]; exists {
			return fmt.Errorf("%w: contract %s already exists", ErrInvalidTransaction, p.ContractID)
		}
		return nil

	case RejectSale:
		return w.checkReview(tx.Sender, p.RequestID)

	case ExecuteSaleContract:
		return w.checkExecute(at, tx, p)
	}

	return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, tx.Data.Type)
}

// Tax returns the tax owed on a sale at the specified price.
func (w *World) Tax(price uint64) uint64 {

	// The rate is capped at 10000 bps so the high word is always below the
	// divisor and the quotient fits.
	hi, lo := bits.Mul64(price, w.genesis.TaxRateBPS)
	tax, _ := bits.Div64(hi, lo, 10_000)
	return tax
}

// =============================================================================

// replayKey returns the key a transaction is remembered by once applied. Only
// transfers carrying a reference are remembered, every other type is stopped
// from applying twice by its own rules.
func replayKey(tx Tx) (string, bool) {
	p, ok := tx.Data.Payload.(TransferCurrency)
	if !ok || p.Reference == "" {
		return "", false
	}

	return tx.Key(), true
}

func (w *World) checkCredit(account string, amount uint64) error {
	if _, overflow := add(w.Balances[account], amount); overflow {
		return fmt.Errorf("%w: balance overflow for %s", ErrInvalidTransaction, account)
	}
	return nil
}

func (w *World) checkTransfer(tx Tx, p TransferCurrency) error {
	if tx.Sender == tx.Recipient {
		return fmt.Errorf("%w: cannot transfer to self", ErrInvalidTransaction)
	}

	if balance := w.Balances[tx.Sender]; balance < p.Amount {
		return fmt.Errorf("%w: balance %d, amount %d", ErrInsufficientFunds, balance, p.Amount)
	}

	return w.checkCredit(tx.Recipient, p.Amount)
}

func (w *World) checkMint(tx Tx, p MintToken) error {
	if _, isNotary := w.IsNotary(tx.Sender); !isNotary {
		return fmt.Errorf("%w: %s is not a notary", ErrUnauthorized, tx.Sender)
	}

	if _, exists := w.Tokens[p.TokenID]; exists {
		return fmt.Errorf("%w: token %s already minted", ErrInvalidTransaction, p.TokenID)
	}

	return nil
}

func (w *World) checkRequestSale(tx Tx, p RequestSaleApproval) error {
	owner, exists := w.Tokens[p.TokenID]
	if !exists {
		return fmt.Errorf("%w: token %s", ErrNotFound, p.TokenID)
	}

	if owner != tx.Sender {
		return fmt.Errorf("%w: %s does not own token %s", ErrUnauthorized, tx.Sender, p.TokenID)
	}

	if _, exists := w.SaleRequests[p.RequestID]; exists {
		return fmt.Errorf("%w: request %s already exists", ErrInvalidTransaction, p.RequestID)
	}

	return nil
}

// checkReview validates a notary can approve or reject the request.
func (w *World) checkReview(notary string, requestID string) error {
	req, exists := w.SaleRequests[requestID]
	if !exists {
		return fmt.Errorf("%w: request %s", ErrNotFound, requestID)
	}

	locality, isNotary := w.IsNotary(notary)
	if !isNotary {
		return fmt.Errorf("%w: %s is not a notary", ErrUnauthorized, notary)
	}

	if locality != req.Locality {
		return fmt.Errorf("%w: notary for %q cannot review a sale in %q", ErrUnauthorized, locality, req.Locality)
	}

	if req.Status != RequestPending {
		return fmt.Errorf("%w: request %s is %s", ErrInvalidTransaction, requestID, req.Status)
	}

	return nil
}

func (w *World) checkExecute(at Position, tx Tx, p ExecuteSaleContract) error {
	c, exists := w.Contracts[p.ContractID]
	if !exists {
		return fmt.Errorf("%w: contract %s", ErrNotFound, p.ContractID)
	}

	if c.Status != ContractOpen {
		return fmt.Errorf("%w: contract %s is %s", ErrInvalidTransaction, p.ContractID, c.Status)
	}

	if at.Timestamp > c.ValidUntil {
		return fmt.Errorf("%w: contract %s", ErrExpired, p.ContractID)
	}

	if tx.Sender == c.Seller {
		return fmt.Errorf("%w: seller cannot buy its own token", ErrInvalidTransaction)
	}

	if w.Tokens[c.TokenID] != c.Seller {
		return fmt.Errorf("%w: seller no longer owns token %s", ErrInvalidTransaction, c.TokenID)
	}

	tax := w.Tax(c.Price)
	total, overflow := add(c.Price, tax)
	if overflow {
		return fmt.Errorf("%w: price overflow", ErrInvalidTransaction)
	}

	if balance := w.Balances[tx.Sender]; balance < total {
		return fmt.Errorf("%w: balance %d, price %d, tax %d", ErrInsufficientFunds, balance, c.Price, tax)
	}

	if err := w.checkCredit(c.Seller, c.Price); err != nil {
		return err
	}

	return w.checkCredit(w.genesis.TaxAuthority, tax)
}

// =============================================================================

func (w *World) mintToken(at Position, tx Tx, p MintToken) {
	w.Tokens[p.TokenID] = tx.Recipient
	w.TokenMetadata[p.TokenID] = TokenMetadata{
		Locality:    p.Locality,
		AssetType:   p.AssetType,
		Area:        p.Area,
		DetailsHash: p.DetailsHash,
		MintedBy:    tx.Sender,
	}

	w.recordEvent(p.TokenID, TokenEvent{
		BlockIndex: at.Index,
		Timestamp:  at.Timestamp,
		Type:       TxMintToken,
		Actor:      tx.Sender,
		Owner:      tx.Recipient,
	})
}

func (w *World) requestSale(at Position, tx Tx, p RequestSaleApproval) {
	w.SaleRequests[p.RequestID] = SaleRequest{
		TokenID:  p.TokenID,
		Seller:   tx.Sender,
		Price:    p.Price,
		Status:   RequestPending,
		Locality: w.TokenMetadata[p.TokenID].Locality,
	}

	w.recordEvent(p.TokenID, TokenEvent{
		BlockIndex: at.Index,
		Timestamp:  at.Timestamp,
		Type:       TxRequestSaleApproval,
		Actor:      tx.Sender,
		Owner:      tx.Sender,
		Price:      p.Price,
		RequestID:  p.RequestID,
	})
}

func (w *World) approveSale(at Position, tx Tx, p ApproveSale) {
	req := w.SaleRequests[p.RequestID]
	req.Status = RequestApproved
	w.SaleRequests[p.RequestID] = req

	w.Contracts[p.ContractID] = SaleContract{
		TokenID:    req.TokenID,
		Seller:     req.Seller,
		Price:      req.Price,
		Status:     ContractOpen,
		ValidUntil: p.ValidUntil,
		RequestID:  p.RequestID,
		ApprovedBy: tx.Sender,
	}

	w.recordEvent(req.TokenID, TokenEvent{
		BlockIndex: at.Index,
		Timestamp:  at.Timestamp,
		Type:       TxApproveSale,
		Actor:      tx.Sender,
		Owner:      w.Tokens[req.TokenID],
		Price:      req.Price,
		RequestID:  p.RequestID,
		ContractID: p.ContractID,
	})
}

func (w *World) rejectSale(at Position, tx Tx, p RejectSale) {
	req := w.SaleRequests[p.RequestID]
	req.Status = RequestRejected
	req.Reason = p.Reason
	w.SaleRequests[p.RequestID] = req

	w.recordEvent(req.TokenID, TokenEvent{
		BlockIndex: at.Index,
		Timestamp:  at.Timestamp,
		Type:       TxRejectSale,
		Actor:      tx.Sender,
		Owner:      w.Tokens[req.TokenID],
		Price:      req.Price,
		RequestID:  p.RequestID,
		Note:       p.Reason,
	})
}

func (w *World) executeSale(at Position, tx Tx, p ExecuteSaleContract) {
	c := w.Contracts[p.ContractID]
	tax := w.Tax(c.Price)
	buyer := tx.Sender

	w.Balances[buyer] -= c.Price + tax
	w.Balances[c.Seller] += c.Price
	w.Balances[w.genesis.TaxAuthority] += tax
	w.Tokens[c.TokenID] = buyer

	c.Status = ContractClosed
	c.Buyer = buyer
	w.Contracts[p.ContractID] = c

	w.TaxReceipts = append(w.TaxReceipts, TaxReceipt{
		ContractID: p.ContractID,
		TokenID:    c.TokenID,
		Seller:     c.Seller,
		Buyer:      buyer,
		Price:      c.Price,
		Tax:        tax,
		BlockIndex: at.Index,
		Timestamp:  at.Timestamp,
	})

	w.recordEvent(c.TokenID, TokenEvent{
		BlockIndex: at.Index,
		Timestamp:  at.Timestamp,
		Type:       TxExecuteSaleContract,
		Actor:      buyer,
		Owner:      buyer,
		Price:      c.Price,
		Tax:        tax,
		RequestID:  c.RequestID,
		ContractID: p.ContractID,
	})
}

func (w *World) expireContract(at Position, tx Tx) {
	p, ok := tx.Data.Payload.(ExecuteSaleContract)
	if !ok {
		return
	}

	c := w.Contracts[p.ContractID]
	c.Status = ContractExpired
	w.Contracts[p.ContractID] = c

	w.recordEvent(c.TokenID, TokenEvent{
		BlockIndex: at.Index,
		Timestamp:  at.Timestamp,
		Type:       TxExecuteSaleContract,
		Actor:      tx.Sender,
		Owner:      w.Tokens[c.TokenID],
		Price:      c.Price,
		RequestID:  c.RequestID,
		ContractID: p.ContractID,
		Note:       "expired",
	})
}

// add returns the sum and whether it overflowed.
func add(a uint64, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry != 0
}
