package cmd

import (
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	recipient   string
	locality    string
	tokenID     string
	assetType   string
	area        uint64
	detailsHash string
	price       uint64
	requestID   string
	contractID  string
	validFor    time.Duration
	reason      string
)

var registerNotaryCmd = &cobra.Command{
	Use:   "register-notary",
	Short: "Register a notary for a locality (government only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submit(recipient, database.RegisterNotary{Locality: locality})
	},
}

var certifyCmd = &cobra.Command{
	Use:   "certify",
	Short: "Certify the identity of an account (notary only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submit(recipient, database.CertifyIdentity{})
	},
}

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a land title token to a certified owner (notary only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := database.MintToken{
			Area:        area,
			AssetType:   assetType,
			DetailsHash: detailsHash,
			Locality:    locality,
			TokenID:     tokenID,
		}
		return submit(recipient, payload)
	},
}

var requestSaleCmd = &cobra.Command{
	Use:   "request-sale",
	Short: "Ask the notaries to approve the sale of an owned token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if requestID == "" {
			requestID = uuid.NewString()
		}
		return submit(database.SystemAddress, database.RequestSaleApproval{Price: price, RequestID: requestID, TokenID: tokenID})
	},
}

var approveSaleCmd = &cobra.Command{
	Use:   "approve-sale",
	Short: "Approve a pending sale request and open a contract (notary only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if contractID == "" {
			contractID = uuid.NewString()
		}
		validUntil := database.Timestamp(time.Now().Add(validFor))
		return submit(database.SystemAddress, database.ApproveSale{ContractID: contractID, RequestID: requestID, ValidUntil: validUntil})
	},
}

var rejectSaleCmd = &cobra.Command{
	Use:   "reject-sale",
	Short: "Reject a pending sale request (notary only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submit(database.SystemAddress, database.RejectSale{Reason: reason, RequestID: requestID})
	},
}

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Execute an open sale contract as the buyer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submit(database.SystemAddress, database.ExecuteSaleContract{ContractID: contractID})
	},
}

func init() {
	rootCmd.AddCommand(registerNotaryCmd, certifyCmd, mintCmd, requestSaleCmd, approveSaleCmd, rejectSaleCmd, buyCmd)

	registerNotaryCmd.Flags().StringVarP(&recipient, "notary", "n", "", "Address of the notary.")
	registerNotaryCmd.Flags().StringVarP(&locality, "locality", "l", "", "Locality the notary serves.")
	registerNotaryCmd.MarkFlagRequired("notary")
	registerNotaryCmd.MarkFlagRequired("locality")

	certifyCmd.Flags().StringVarP(&recipient, "identity", "i", "", "Address to certify.")
	certifyCmd.MarkFlagRequired("identity")

	mintCmd.Flags().StringVarP(&recipient, "owner", "o", "", "Address of the certified owner.")
	mintCmd.Flags().StringVarP(&tokenID, "token", "k", "", "Token id.")
	mintCmd.Flags().StringVarP(&locality, "locality", "l", "", "Locality of the asset.")
	mintCmd.Flags().StringVar(&assetType, "asset-type", "land", "Kind of asset.")
	mintCmd.Flags().Uint64Var(&area, "area", 0, "Area of the asset.")
	mintCmd.Flags().StringVar(&detailsHash, "details-hash", "", "Hash of the off-chain title documents.")
	mintCmd.MarkFlagRequired("owner")
	mintCmd.MarkFlagRequired("token")
	mintCmd.MarkFlagRequired("locality")

	requestSaleCmd.Flags().StringVarP(&tokenID, "token", "k", "", "Token to sell.")
	requestSaleCmd.Flags().Uint64Var(&price, "price", 0, "Asking price.")
	requestSaleCmd.Flags().StringVar(&requestID, "request", "", "Request id, generated when empty.")
	requestSaleCmd.MarkFlagRequired("token")
	requestSaleCmd.MarkFlagRequired("price")

	approveSaleCmd.Flags().StringVar(&requestID, "request", "", "Request to approve.")
	approveSaleCmd.Flags().StringVar(&contractID, "contract", "", "Contract id, generated when empty.")
	approveSaleCmd.Flags().DurationVar(&validFor, "valid-for", 24*time.Hour, "How long the contract stays open.")
	approveSaleCmd.MarkFlagRequired("request")

	rejectSaleCmd.Flags().StringVar(&requestID, "request", "", "Request to reject.")
	rejectSaleCmd.Flags().StringVar(&reason, "reason", "", "Reason for the rejection.")
	rejectSaleCmd.MarkFlagRequired("request")

	buyCmd.Flags().StringVar(&contractID, "contract", "", "Contract to execute.")
	buyCmd.MarkFlagRequired("contract")
}
