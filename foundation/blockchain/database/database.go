// Package database handles all the lower level support for maintaining the
// chain in storage and the world state derived from it.
package database

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the chain. The chain is
// always written as a whole.
type Storage interface {
	Load() ([]Block, error)
	Replace(blocks []Block) error
	Close() error
}

// =============================================================================

// Database manages the chain and the world state replayed from it.
type Database struct {
	mu sync.RWMutex

	genesis   genesis.Genesis
	chain     []Block
	world     *World
	storage   Storage
	evHandler func(v string, args ...any)
}

// New constructs a new database by loading the chain from storage. An empty
// storage is seeded with the genesis block. A stored chain that does not
// validate stops the node from starting.
func New(gen genesis.Genesis, storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	chain, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("loading chain: %w", err)
	}

	if len(chain) == 0 {
		ev("database: new: seeding genesis block")

		chain = []Block{GenesisBlock(gen)}
		if err := storage.Replace(chain); err != nil {
			return nil, fmt.Errorf("writing genesis block: %w", err)
		}
	}

	if err := ValidateChain(gen, chain); err != nil {
		return nil, fmt.Errorf("stored chain: %w", err)
	}

	db := Database{
		genesis:   gen,
		chain:     chain,
		world:     Rebuild(gen, chain, ev),
		storage:   storage,
		evHandler: ev,
	}

	ev("database: new: loaded %d blocks", len(chain))

	return &db, nil
}

// Close closes the storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Genesis returns the chain constants.
func (db *Database) Genesis() genesis.Genesis {
	return db.genesis
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.chain[len(db.chain)-1]
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.chain)
}

// Chain returns a copy of the chain.
func (db *Database) Chain() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return slices.Clone(db.chain)
}

// GetBlock returns the block at the specified index.
func (db *Database) GetBlock(index uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if index < GenesisIndex || index > uint64(len(db.chain)) {
		return Block{}, fmt.Errorf("%w: block %d", ErrNotFound, index)
	}

	return db.chain[index-GenesisIndex], nil
}

// World returns a copy of the current world state.
func (db *Database) World() *World {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.world.Copy()
}

// View executes the function against the current world state without
// copying it. The world must not be retained or changed.
func (db *Database) View(fn func(w *World)) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	fn(db.world)
}

// Admit checks the transaction against the world as the next block would
// see it at the specified time.
func (db *Database) Admit(stx SignedTx, now time.Time) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	at := Position{
		Index:     db.chain[len(db.chain)-1].Index + 1,
		Timestamp: Timestamp(now),
	}

	return db.world.Admit(at, stx)
}

// Append validates the block against the latest block, adds it to the chain
// and rebuilds the world. The block is kept even when storage fails, in which
// case an error wrapping ErrPersistence is returned.
func (db *Database) Append(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	latest := db.chain[len(db.chain)-1]
	if err := block.ValidateNext(latest, db.genesis.Difficulty); err != nil {
		return err
	}

	if err := validateTransactions(block); err != nil {
		return err
	}

	chain := append(slices.Clip(db.chain), block)
	return db.commit(chain)
}

// Replace validates the full chain, swaps it in and rebuilds the world. The
// chain is kept even when storage fails, in which case an error wrapping
// ErrPersistence is returned.
func (db *Database) Replace(chain []Block) error {
	if err := ValidateChain(db.genesis, chain); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	return db.commit(slices.Clone(chain))
}

// commit swaps in the chain, replays it and writes it to storage.
func (db *Database) commit(chain []Block) error {
	db.chain = chain
	db.world = Rebuild(db.genesis, chain, db.evHandler)

	if err := db.storage.Replace(chain); err != nil {
		db.evHandler("database: commit: ERROR: %s", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return nil
}
