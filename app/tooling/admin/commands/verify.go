package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
)

// Verify runs the full chain validation over a chain file.
func Verify(w io.Writer, genesisPath string, chainPath string) error {
	gen, chain, err := loadChain(genesisPath, chainPath)
	if err != nil {
		return err
	}

	if err := database.ValidateChain(gen, chain); err != nil {
		return err
	}

	head := chain[len(chain)-1]
	fmt.Fprintf(w, "Chain is valid: blocks[%d] head[%s]\n", len(chain), head.Hash())

	return nil
}
