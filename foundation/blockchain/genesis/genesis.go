// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/signature"
)

// Default values used when a genesis is constructed by the tooling.
const (
	DefaultDifficulty   = 4
	DefaultMiningReward = 100
	DefaultFaucetReward = 100
	DefaultTaxRateBPS   = 500
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date"`
	Government   string    `json:"government"`    // The only account that can register notaries.
	TaxAuthority string    `json:"tax_authority"` // The account credited with the tax of every sale.
	TaxRateBPS   uint64    `json:"tax_rate_bps"`  // Tax charged on a sale in basis points (500 = 5%).
	Difficulty   uint16    `json:"difficulty"`    // Number of leading hex zeros the proof hash needs.
	MiningReward uint64    `json:"mining_reward"` // Reward for sealing a block.
	FaucetReward uint64    `json:"faucet_reward"` // Credit issued by the system faucet.
}

// New constructs a genesis with the default chain constants.
func New(government string, taxAuthority string) Genesis {
	return Genesis{
		Date:         time.Now().UTC().Truncate(time.Second),
		Government:   government,
		TaxAuthority: taxAuthority,
		TaxRateBPS:   DefaultTaxRateBPS,
		Difficulty:   DefaultDifficulty,
		MiningReward: DefaultMiningReward,
		FaucetReward: DefaultFaucetReward,
	}
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, fmt.Errorf("invalid genesis %s: %w", path, err)
	}

	return genesis, nil
}

// Save writes the genesis file, creating the folder if needed.
func Save(path string, genesis Genesis) error {
	if err := genesis.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks the chain constants are usable.
func (g Genesis) Validate() error {
	if !signature.IsAddress(g.Government) {
		return errors.New("government is not a valid address")
	}

	if !signature.IsAddress(g.TaxAuthority) {
		return errors.New("tax authority is not a valid address")
	}

	if g.TaxRateBPS > 10_000 {
		return fmt.Errorf("tax rate %d bps is above 100%%", g.TaxRateBPS)
	}

	if g.Difficulty == 0 || g.Difficulty > 64 {
		return fmt.Errorf("difficulty %d out of range", g.Difficulty)
	}

	return nil
}
