// This program is the wallet for the land title ledger. It manages key files
// and signs transactions submitted to a node.
package main

import "github.com/ardanlabs/landledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
