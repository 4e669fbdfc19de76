package database

import (
	"fmt"

	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
)

// ValidateChain checks the full chain from the genesis block forward. Any
// failure rejects the whole chain.
func ValidateChain(gen genesis.Genesis, chain []Block) error {
	if len(chain) == 0 {
		return fmt.Errorf("%w: chain is empty", ErrInvalidChain)
	}

	if err := chain[0].ValidateGenesis(); err != nil {
		return err
	}

	// Nodes only share history when they start from the same genesis file.
	if chain[0].Hash() != GenesisBlock(gen).Hash() {
		return fmt.Errorf("%w: genesis block does not match the genesis file", ErrInvalidChain)
	}

	for i, block := range chain {
		if i > 0 {
			if err := block.ValidateNext(chain[i-1], gen.Difficulty); err != nil {
				return err
			}
		}

		if err := validateTransactions(block); err != nil {
			return err
		}
	}

	return nil
}

// IsValid reports whether the chain passes validation.
func IsValid(gen genesis.Genesis, chain []Block) bool {
	return ValidateChain(gen, chain) == nil
}

// validateTransactions checks every transaction in the block is well formed
// and properly signed.
func validateTransactions(block Block) error {
	for i, tx := range block.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("%w: block %d tx %d: %w", ErrInvalidChain, block.Index, i, err)
		}
	}

	return nil
}
