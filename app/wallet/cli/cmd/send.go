package cmd

import (
	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	sendTo        string
	sendAmount    uint64
	sendReference string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Transfer currency to another account",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendTo, "to", "t", "", "Address of the recipient.")
	sendCmd.Flags().Uint64VarP(&sendAmount, "amount", "v", 0, "Amount to send.")
	sendCmd.Flags().StringVarP(&sendReference, "reference", "r", "", "Reference making the transfer unique, generated when empty.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}

func sendRun(cmd *cobra.Command, args []string) error {
	if sendReference == "" {
		sendReference = uuid.NewString()
	}

	return submit(sendTo, database.TransferCurrency{Amount: sendAmount, Reference: sendReference})
}
