package database

import (
	"maps"
	"slices"

	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
)

// ContractStatus represents the lifecycle of a sale contract.
type ContractStatus string

// Set of contract states.
const (
	ContractOpen    ContractStatus = "OPEN"
	ContractClosed  ContractStatus = "CLOSED"
	ContractExpired ContractStatus = "EXPIRED"
)

// RequestStatus represents the lifecycle of a sale request.
type RequestStatus string

// Set of sale request states.
const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// TokenMetadata describes a minted asset.
type TokenMetadata struct {
	Locality    string `json:"locality"`
	AssetType   string `json:"asset_type"`
	Area        uint64 `json:"area"`
	DetailsHash string `json:"details_hash"`
	MintedBy    string `json:"minted_by"`
}

// SaleContract is an approved offer to sell a token at a price.
type SaleContract struct {
	TokenID    string         `json:"token_id"`
	Seller     string         `json:"seller"`
	Price      uint64         `json:"price"`
	Status     ContractStatus `json:"status"`
	ValidUntil float64        `json:"valid_until"`
	Buyer      string         `json:"buyer,omitempty"`
	RequestID  string         `json:"request_id"`
	ApprovedBy string         `json:"approved_by"`
}

// SaleRequest is an owner's request for a notary to approve a sale.
type SaleRequest struct {
	TokenID  string        `json:"token_id"`
	Seller   string        `json:"seller"`
	Price    uint64        `json:"price"`
	Status   RequestStatus `json:"status"`
	Locality string        `json:"locality"`
	Reason   string        `json:"reason,omitempty"`
}

// TaxReceipt records the tax settled by an executed sale.
type TaxReceipt struct {
	ContractID string  `json:"contract_id"`
	TokenID    string  `json:"token_id"`
	Seller     string  `json:"seller"`
	Buyer      string  `json:"buyer"`
	Price      uint64  `json:"price"`
	Tax        uint64  `json:"tax"`
	BlockIndex uint64  `json:"block_index"`
	Timestamp  float64 `json:"timestamp"`
}

// TokenEvent is one effective change in the life of a token.
type TokenEvent struct {
	BlockIndex uint64  `json:"block_index"`
	Timestamp  float64 `json:"timestamp"`
	Type       TxType  `json:"type"`
	Actor      string  `json:"actor"`
	Owner      string  `json:"owner"`
	Price      uint64  `json:"price,omitempty"`
	Tax        uint64  `json:"tax,omitempty"`
	RequestID  string  `json:"request_id,omitempty"`
	ContractID string  `json:"contract_id,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// =============================================================================

// World is the state derived by replaying every transaction of the chain in
// order. Nothing changes it outside of Apply.
type World struct {
	Balances            map[string]uint64        `json:"balances"`
	Tokens              map[string]string        `json:"tokens"`
	TokenMetadata       map[string]TokenMetadata `json:"token_metadata"`
	Notaries            map[string]string        `json:"notaries"` // Authorized notaries and their locality.
	CertifiedIdentities map[string]bool          `json:"certified_identities"`
	Contracts           map[string]SaleContract  `json:"contracts"`
	SaleRequests        map[string]SaleRequest   `json:"pending_sale_requests"`
	TaxReceipts         []TaxReceipt             `json:"tax_receipts"`
	TokenEvents         map[string][]TokenEvent  `json:"-"`

	genesis genesis.Genesis
	applied map[string]struct{}
}

// NewWorld constructs the world as it is before the first transaction.
func NewWorld(gen genesis.Genesis) *World {
	return &World{
		Balances:            make(map[string]uint64),
		Tokens:              make(map[string]string),
		TokenMetadata:       make(map[string]TokenMetadata),
		Notaries:            make(map[string]string),
		CertifiedIdentities: make(map[string]bool),
		Contracts:           make(map[string]SaleContract),
		SaleRequests:        make(map[string]SaleRequest),
		TaxReceipts:         []TaxReceipt{},
		TokenEvents:         make(map[string][]TokenEvent),
		genesis:             gen,
		applied:             make(map[string]struct{}),
	}
}

// Rebuild replays the chain from the genesis world. The event handler, when
// not nil, is told about every transaction that had no effect.
func Rebuild(gen genesis.Genesis, chain []Block, evHandler func(v string, args ...any)) *World {
	w := NewWorld(gen)

	for _, block := range chain {
		for _, tx := range block.Transactions {
			if err := w.Apply(block, tx); err != nil && evHandler != nil {
				evHandler("world: replay: blk[%d]: tx[%s] %s: no effect: %s", block.Index, tx.Transaction.Key(), tx.Transaction.Data.Type, err)
			}
		}
	}

	return w
}

// Genesis returns the chain constants the world was built with.
func (w *World) Genesis() genesis.Genesis {
	return w.genesis
}

// Copy returns a deep copy of the world.
func (w *World) Copy() *World {
	events := make(map[string][]TokenEvent, len(w.TokenEvents))
	for id, list := range w.TokenEvents {
		events[id] = slices.Clone(list)
	}

	return &World{
		Balances:            maps.Clone(w.Balances),
		Tokens:              maps.Clone(w.Tokens),
		TokenMetadata:       maps.Clone(w.TokenMetadata),
		Notaries:            maps.Clone(w.Notaries),
		CertifiedIdentities: maps.Clone(w.CertifiedIdentities),
		Contracts:           maps.Clone(w.Contracts),
		SaleRequests:        maps.Clone(w.SaleRequests),
		TaxReceipts:         slices.Clone(w.TaxReceipts),
		TokenEvents:         events,
		genesis:             w.genesis,
		applied:             maps.Clone(w.applied),
	}
}

// Balance returns the balance for the account.
func (w *World) Balance(account string) uint64 {
	return w.Balances[account]
}

// TokensOwnedBy returns the sorted ids of the tokens owned by the account.
func (w *World) TokensOwnedBy(account string) []string {
	var ids []string
	for id, owner := range w.Tokens {
		if owner == account {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids)
	return ids
}

// IsNotary reports whether the account is an authorized notary and returns
// its locality.
func (w *World) IsNotary(account string) (string, bool) {
	locality, exists := w.Notaries[account]
	return locality, exists
}

// TotalSupply returns the sum of every balance.
func (w *World) TotalSupply() uint64 {
	var total uint64
	for _, balance := range w.Balances {
		total += balance
	}
	return total
}
