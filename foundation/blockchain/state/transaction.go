package state

import (
	"fmt"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
)

// SubmitTransaction validates the transaction against the current world and
// adds it to the mempool. It returns the index of the block expected to
// carry the transaction.
func (s *State) SubmitTransaction(stx database.SignedTx) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The system sender is never checked cryptographically.
	if stx.IsSystem() {
		stx.Signature = database.RewardSignature
	}

	if s.mempool.Contains(stx.Transaction) {
		return 0, fmt.Errorf("%w: transaction already pending", database.ErrInvalidTransaction)
	}

	if err := s.db.Admit(stx, time.Now()); err != nil {
		return 0, err
	}

	n, err := s.mempool.Upsert(stx)
	if err != nil {
		return 0, err
	}

	next := s.db.LatestBlock().Index + 1

	s.evHandler("state: SubmitTransaction: tx[%s]: type[%s]: from[%s]: mempool[%d]: next-blk[%d]", stx.Transaction.Key(), stx.Transaction.Data.Type, stx.Transaction.Sender, n, next)

	if s.autoSeal {
		s.Worker.SignalStartMining()
	}

	return next, nil
}

// RequestFaucet submits a system transaction crediting the account with the
// faucet reward.
func (s *State) RequestFaucet(account string) (uint64, error) {
	return s.SubmitTransaction(database.NewSystemTx(account, database.Faucet{}))
}
