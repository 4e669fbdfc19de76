// Package mempool maintains the pending transactions waiting to be sealed.
package mempool

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
)

// Mempool represents a cache of transactions keyed by their canonical
// encoding. Transactions are handed out in the order they were admitted.
type Mempool struct {
	mu    sync.RWMutex
	pool  map[string]database.SignedTx
	order []string
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.SignedTx),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Contains reports whether a transaction with the same content is pending.
func (mp *Mempool) Contains(tx database.Tx) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.pool[tx.Key()]
	return exists
}

// Upsert adds a transaction to the end of the pool. A transaction already
// pending is rejected.
func (mp *Mempool) Upsert(stx database.SignedTx) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	key := stx.Transaction.Key()
	if _, exists := mp.pool[key]; exists {
		return len(mp.pool), fmt.Errorf("%w: transaction %s already pending", database.ErrInvalidTransaction, key)
	}

	mp.pool[key] = stx
	mp.order = append(mp.order, key)

	return len(mp.pool), nil
}

// Delete removes the transactions with the same content as the specified
// ones. It returns how many were removed.
func (mp *Mempool) Delete(txs ...database.SignedTx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	for _, stx := range txs {
		key := stx.Transaction.Key()
		if _, exists := mp.pool[key]; exists {
			delete(mp.pool, key)
			removed++
		}
	}

	if removed > 0 {
		order := mp.order[:0]
		for _, key := range mp.order {
			if _, exists := mp.pool[key]; exists {
				order = append(order, key)
			}
		}
		mp.order = order
	}

	return removed
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.SignedTx)
	mp.order = nil
}

// PickAll returns a copy of every pending transaction in admission order.
func (mp *Mempool) PickAll() []database.SignedTx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	txs := make([]database.SignedTx, 0, len(mp.order))
	for _, key := range mp.order {
		txs = append(txs, mp.pool[key])
	}

	return txs
}
