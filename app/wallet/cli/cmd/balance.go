package cmd

import (
	"fmt"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type balance struct {
	Account string `json:"account"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []balance `json:"balances"`
}

var balanceAll bool

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance, or every balance with --all",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().BoolVar(&balanceAll, "all", false, "Print every account.")
}

func balanceRun(cmd *cobra.Command, args []string) error {
	path := "/v1/balances/list"
	if !balanceAll {
		_, address, err := loadKey()
		if err != nil {
			return err
		}
		path += "/" + address
	}

	var bals balances
	if err := send(http.MethodGet, path, nil, &bals); err != nil {
		return err
	}

	data := pterm.TableData{{"Account", "Name", "Balance"}}
	for _, bal := range bals.Balances {
		data = append(data, []string{bal.Account, bal.Name, fmt.Sprint(bal.Balance)})
	}

	pterm.Info.Printfln("head[%s] uncommitted[%d]", bals.LatestBlock, bals.Uncommitted)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
