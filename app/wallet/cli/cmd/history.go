package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var historyToken string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the provenance of a token",
	RunE:  historyRun,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&historyToken, "token", "k", "", "Token id.")
	historyCmd.MarkFlagRequired("token")
}

func historyRun(cmd *cobra.Command, args []string) error {
	var events []database.TokenEvent
	if err := send(http.MethodGet, "/v1/tokens/"+historyToken+"/history", nil, &events); err != nil {
		return err
	}

	data := pterm.TableData{{"Block", "Time", "Event", "Actor", "Owner", "Price", "Tax", "Note"}}
	for _, ev := range events {
		at := time.Unix(int64(ev.Timestamp), 0).UTC().Format(time.RFC3339)
		data = append(data, []string{fmt.Sprint(ev.BlockIndex), at, string(ev.Type), ev.Actor, ev.Owner, fmt.Sprint(ev.Price), fmt.Sprint(ev.Tax), ev.Note})
	}

	pterm.DefaultSection.Printfln("Token %s", historyToken)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
