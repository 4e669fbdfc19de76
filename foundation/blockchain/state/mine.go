package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
)

// SealBlock attempts to create a new block from every transaction in the
// mempool plus the mining reward. The proof of work runs without holding the
// lock so the node keeps serving requests. A block that commits but cannot be
// stored is returned together with an error wrapping ErrPersistence.
func (s *State) SealBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: SealBlock: MINING: check mempool count")

	s.mu.Lock()
	txs := s.mempool.PickAll()
	latest := s.db.LatestBlock()
	s.mu.Unlock()

	// Are there enough transactions in the pool.
	if len(txs) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	s.evHandler("state: SealBlock: MINING: perform POW: prevBlk[%d]: txs[%d]", latest.Index, len(txs))

	// Attempt to solve the POW puzzle. This can be cancelled.
	proof, err := database.Seal(ctx, latest.Proof, s.genesis.Difficulty)
	if err != nil {
		return database.Block{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The head may have moved while the puzzle was being solved.
	if head := s.db.LatestBlock(); head.Hash() != latest.Hash() {
		return database.Block{}, fmt.Errorf("%w: sealed on blk[%d], head is blk[%d]", ErrStaleSeal, latest.Index, head.Index)
	}

	reward := database.NewSystemTx(s.beneficiaryID, database.MiningReward{})
	block := database.NewBlock(latest, proof, time.Now(), append(txs, reward))

	s.evHandler("state: SealBlock: MINING: append blk[%d]", block.Index)

	err = s.db.Append(block)
	if err != nil && !errors.Is(err, ErrPersistence) {
		return database.Block{}, err
	}

	// Only the sealed transactions leave the mempool.
	s.mempool.Delete(txs...)

	s.blockEvent(block)

	return block, err
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"block":%s}`, block.Hash(), string(blockJSON))
}
