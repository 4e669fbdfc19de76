package commands

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/landledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// GenesisConfig names the files and constants used to create a genesis.
type GenesisConfig struct {
	AccountsPath string
	GenesisPath  string
	TaxRateBPS   uint64
	Difficulty   uint16
	MiningReward uint64
	FaucetReward uint64
}

// Genesis creates or reuses the government and tax authority keys and writes
// a genesis file naming them.
func Genesis(w io.Writer, cfg GenesisConfig) (genesis.Genesis, error) {
	if err := os.MkdirAll(cfg.AccountsPath, 0755); err != nil {
		return genesis.Genesis{}, err
	}

	government, err := loadOrCreateKey(filepath.Join(cfg.AccountsPath, "government.ecdsa"))
	if err != nil {
		return genesis.Genesis{}, err
	}

	taxAuthority, err := loadOrCreateKey(filepath.Join(cfg.AccountsPath, "tax_authority.ecdsa"))
	if err != nil {
		return genesis.Genesis{}, err
	}

	gen := genesis.New(government, taxAuthority)
	gen.TaxRateBPS = cfg.TaxRateBPS
	gen.Difficulty = cfg.Difficulty
	gen.MiningReward = cfg.MiningReward
	gen.FaucetReward = cfg.FaucetReward

	if err := genesis.Save(cfg.GenesisPath, gen); err != nil {
		return genesis.Genesis{}, err
	}

	fmt.Fprintf(w, "Genesis:       %s\n", cfg.GenesisPath)
	fmt.Fprintf(w, "Government:    %s\n", government)
	fmt.Fprintf(w, "Tax Authority: %s\n", taxAuthority)

	return gen, nil
}

func loadOrCreateKey(path string) (string, error) {
	var privateKey *ecdsa.PrivateKey

	switch _, err := os.Stat(path); {
	case err == nil:
		privateKey, err = crypto.LoadECDSA(path)
		if err != nil {
			return "", fmt.Errorf("loading %s: %w", path, err)
		}

	case errors.Is(err, os.ErrNotExist):
		privateKey, _, err = database.GenerateKey()
		if err != nil {
			return "", err
		}
		if err := crypto.SaveECDSA(path, privateKey); err != nil {
			return "", fmt.Errorf("saving %s: %w", path, err)
		}

	default:
		return "", err
	}

	return signature.PublicKeyToAddress(privateKey.PublicKey), nil
}
