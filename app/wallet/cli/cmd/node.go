package cmd

import (
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var faucetCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Request faucet funds for the wallet account",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, address, err := loadKey()
		if err != nil {
			return err
		}

		var resp submitted
		if err := send(http.MethodPost, "/v1/faucet", map[string]string{"account": address}, &resp); err != nil {
			return err
		}

		pterm.Success.Printfln("%s: tx[%s] next-blk[%d]", resp.Status, resp.Key, resp.NextBlock)
		return nil
	},
}

var sealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Ask the node to seal the mempool into a block",
	RunE: func(cmd *cobra.Command, args []string) error {
		var blk struct {
			Index        uint64 `json:"index"`
			Hash         string `json:"hash"`
			Transactions []any  `json:"transactions"`
		}
		if err := send(http.MethodPost, "/v1/block/seal", nil, &blk); err != nil {
			return err
		}

		pterm.Success.Printfln("sealed blk[%d] hash[%s] txs[%d]", blk.Index, blk.Hash, len(blk.Transactions))
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Ask the node to reconcile its chain with its peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Adopted bool   `json:"adopted"`
			Length  int    `json:"length"`
			Latest  string `json:"latest_block"`
		}
		if err := send(http.MethodPost, "/v1/sync", nil, &resp); err != nil {
			return err
		}

		pterm.Info.Printfln("adopted[%t] length[%d] head[%s]", resp.Adopted, resp.Length, resp.Latest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(faucetCmd, sealCmd, syncCmd)
}
