package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// Token is a token with its owner and metadata.
type Token struct {
	ID       string                 `json:"id"`
	Owner    string                 `json:"owner"`
	Metadata database.TokenMetadata `json:"metadata"`
}

// =============================================================================

// QueryBalances returns the balance of every account, or only of the
// specified account when it is not empty.
func (s *State) QueryBalances(account string) map[string]uint64 {
	balances := make(map[string]uint64)

	s.db.View(func(w *database.World) {
		if account != "" {
			balances[account] = w.Balance(account)
			return
		}
		maps.Copy(balances, w.Balances)
	})

	return balances
}

// QueryTokens returns the tokens sorted by id, only the ones owned by the
// specified account when it is not empty.
func (s *State) QueryTokens(owner string) []Token {
	var tokens []Token

	s.db.View(func(w *database.World) {
		for id, o := range w.Tokens {
			if owner != "" && o != owner {
				continue
			}
			tokens = append(tokens, Token{ID: id, Owner: o, Metadata: w.TokenMetadata[id]})
		}
	})

	slices.SortFunc(tokens, func(a, b Token) int {
		return strings.Compare(a.ID, b.ID)
	})

	return tokens
}

// QueryTokenHistory returns the ordered events for the token.
func (s *State) QueryTokenHistory(tokenID string) ([]database.TokenEvent, error) {
	var history []database.TokenEvent
	var err error

	s.db.View(func(w *database.World) {
		history, err = w.TokenHistory(tokenID)
	})

	return history, err
}

// QueryContracts returns a copy of the sale contracts keyed by id.
func (s *State) QueryContracts() map[string]database.SaleContract {
	var contracts map[string]database.SaleContract

	s.db.View(func(w *database.World) {
		contracts = maps.Clone(w.Contracts)
	})

	return contracts
}

// QuerySaleRequests returns a copy of the sale requests keyed by id.
func (s *State) QuerySaleRequests() map[string]database.SaleRequest {
	var requests map[string]database.SaleRequest

	s.db.View(func(w *database.World) {
		requests = maps.Clone(w.SaleRequests)
	})

	return requests
}

// QueryTaxReceipts returns a copy of the tax receipts in settlement order.
func (s *State) QueryTaxReceipts() []database.TaxReceipt {
	var receipts []database.TaxReceipt

	s.db.View(func(w *database.World) {
		receipts = slices.Clone(w.TaxReceipts)
	})

	return receipts
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlocksByNumber returns the set of blocks based on block numbers.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) ([]database.Block, error) {
	latest := s.db.LatestBlock().Index

	if from == QueryLatest {
		from = latest
		to = latest
	}
	if to == QueryLatest || to > latest {
		to = latest
	}

	if from < database.GenesisIndex || from > to {
		return nil, fmt.Errorf("%w: blocks %d to %d", database.ErrNotFound, from, to)
	}

	out := make([]database.Block, 0, to-from+1)
	for i := from; i <= to; i++ {
		block, err := s.db.GetBlock(i)
		if err != nil {
			return nil, err
		}
		out = append(out, block)
	}

	return out, nil
}

