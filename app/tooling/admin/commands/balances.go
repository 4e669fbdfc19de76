package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
)

// Balances replays the chain file and prints the balances, or the balance of
// one account.
func Balances(w io.Writer, genesisPath string, chainPath string, account string) error {
	gen, chain, err := loadChain(genesisPath, chainPath)
	if err != nil {
		return err
	}

	world := database.Rebuild(gen, chain, nil)

	fmt.Fprintf(w, "LatestBlockHash: %s\n\n", chain[len(chain)-1].Hash())

	for _, act := range slices.Sorted(maps.Keys(world.Balances)) {
		if account != "" && act != account {
			continue
		}
		fmt.Fprintf(w, "Account: %s  Balance: %d\n", act, world.Balances[act])
	}

	return nil
}
