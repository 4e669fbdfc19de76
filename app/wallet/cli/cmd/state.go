package cmd

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the tokens, contracts and sale requests known to the node",
	RunE:  stateRun,
}

func init() {
	rootCmd.AddCommand(stateCmd)
}

func stateRun(cmd *cobra.Command, args []string) error {
	var view struct {
		LatestBlock string         `json:"latest_block"`
		Length      int            `json:"length"`
		Uncommitted int            `json:"uncommitted"`
		SyncStatus  string         `json:"sync_status"`
		World       database.World `json:"world"`
	}
	if err := send(http.MethodGet, "/v1/state", nil, &view); err != nil {
		return err
	}
	w := view.World

	pterm.DefaultSection.Printfln("Chain length[%d] head[%s] uncommitted[%d] %s", view.Length, view.LatestBlock, view.Uncommitted, view.SyncStatus)

	notaries := pterm.TableData{{"Notary", "Locality"}}
	for _, addr := range slices.Sorted(maps.Keys(w.Notaries)) {
		notaries = append(notaries, []string{addr, w.Notaries[addr]})
	}
	pterm.DefaultSection.Println("Notaries")
	if err := pterm.DefaultTable.WithHasHeader().WithData(notaries).Render(); err != nil {
		return err
	}

	tokens := pterm.TableData{{"Token", "Owner", "Locality", "Type", "Area"}}
	for _, id := range slices.Sorted(maps.Keys(w.Tokens)) {
		md := w.TokenMetadata[id]
		tokens = append(tokens, []string{id, w.Tokens[id], md.Locality, md.AssetType, fmt.Sprint(md.Area)})
	}
	pterm.DefaultSection.Println("Tokens")
	if err := pterm.DefaultTable.WithHasHeader().WithData(tokens).Render(); err != nil {
		return err
	}

	requests := pterm.TableData{{"Request", "Token", "Seller", "Price", "Status"}}
	for _, id := range slices.Sorted(maps.Keys(w.SaleRequests)) {
		r := w.SaleRequests[id]
		requests = append(requests, []string{id, r.TokenID, r.Seller, fmt.Sprint(r.Price), string(r.Status)})
	}
	pterm.DefaultSection.Println("Sale Requests")
	if err := pterm.DefaultTable.WithHasHeader().WithData(requests).Render(); err != nil {
		return err
	}

	contracts := pterm.TableData{{"Contract", "Token", "Seller", "Price", "Status", "Valid Until"}}
	for _, id := range slices.Sorted(maps.Keys(w.Contracts)) {
		c := w.Contracts[id]
		until := time.Unix(int64(c.ValidUntil), 0).UTC().Format(time.RFC3339)
		contracts = append(contracts, []string{id, c.TokenID, c.Seller, fmt.Sprint(c.Price), string(c.Status), until})
	}
	pterm.DefaultSection.Println("Contracts")
	return pterm.DefaultTable.WithHasHeader().WithData(contracts).Render()
}
