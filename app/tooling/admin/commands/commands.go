// Package commands contains the admin tasks run against genesis and chain
// files.
package commands

import (
	"fmt"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/ardanlabs/landledger/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
)

// loadChain reads the genesis file and the chain file.
func loadChain(genesisPath string, chainPath string) (genesis.Genesis, []database.Block, error) {
	gen, err := genesis.Load(genesisPath)
	if err != nil {
		return genesis.Genesis{}, nil, err
	}

	store, err := disk.New(chainPath)
	if err != nil {
		return genesis.Genesis{}, nil, err
	}
	defer store.Close()

	chain, err := store.Load()
	if err != nil {
		return genesis.Genesis{}, nil, err
	}
	if len(chain) == 0 {
		return genesis.Genesis{}, nil, fmt.Errorf("chain file %s is empty", chainPath)
	}

	return gen, chain, nil
}
