// Package memory implements the chain storage in memory for tests and
// throwaway nodes.
package memory

import (
	"slices"
	"sync"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
)

// Memory keeps the chain in memory. This implements the database.Storage
// interface.
type Memory struct {
	mu     sync.Mutex
	blocks []database.Block
	err    error
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Load returns a copy of the stored chain.
func (m *Memory) Load() ([]database.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.blocks), nil
}

// Replace stores a copy of the chain. It returns the configured failure
// if one was set.
func (m *Memory) Replace(blocks []database.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.blocks = slices.Clone(blocks)
	return nil
}

// Close has nothing to release.
func (m *Memory) Close() error {
	return nil
}

// Fail makes every following Replace return the error. A nil error restores
// normal behavior.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

// Len returns the number of stored blocks.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.blocks)
}
