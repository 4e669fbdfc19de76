package commands

import (
	"fmt"
	"io"
)

// Transactions prints the transactions of the chain file, or only those
// sent by or to one account.
func Transactions(w io.Writer, genesisPath string, chainPath string, account string) error {
	_, chain, err := loadChain(genesisPath, chainPath)
	if err != nil {
		return err
	}

	for _, block := range chain {
		for _, stx := range block.Transactions {
			tx := stx.Transaction
			if account != "" && tx.Sender != account && tx.Recipient != account {
				continue
			}

			fmt.Fprintf(w, "Block: %d  Type: %s  From: %s  To: %s  Key: %s\n",
				block.Index, tx.Data.Type, tx.Sender, tx.Recipient, tx.Key())
		}
	}

	return nil
}
