// This program performs administrative tasks for the land title ledger.
package main

import (
	"fmt"
	"os"

	"github.com/ardanlabs/landledger/app/tooling/admin/commands"
	"github.com/ardanlabs/landledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/landledger/foundation/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("admin", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	var (
		genesisPath string
		chainPath   string
		gcfg        commands.GenesisConfig
	)

	root := &cobra.Command{
		Use:           "admin",
		Short:         "Administrative tasks for the land title ledger",
		Version:       build,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&genesisPath, "genesis", "g", "zblock/genesis.json", "Path to the genesis file.")
	root.PersistentFlags().StringVarP(&chainPath, "chain", "c", "zblock/blocks_9080.json", "Path to a node chain file.")

	genesisCmd := &cobra.Command{
		Use:   "genesis",
		Short: "Create the government and tax authority keys and the genesis file",
		RunE: func(cmd *cobra.Command, args []string) error {
			gcfg.GenesisPath = genesisPath
			gen, err := commands.Genesis(cmd.OutOrStdout(), gcfg)
			if err != nil {
				return err
			}
			log.Infow("genesis", "path", genesisPath, "government", gen.Government, "tax_authority", gen.TaxAuthority)
			return nil
		},
	}
	genesisCmd.Flags().StringVar(&gcfg.AccountsPath, "accounts", "zblock/accounts/", "Directory for the key files.")
	genesisCmd.Flags().Uint64Var(&gcfg.TaxRateBPS, "tax-rate", genesis.DefaultTaxRateBPS, "Sale tax in basis points.")
	genesisCmd.Flags().Uint16Var(&gcfg.Difficulty, "difficulty", genesis.DefaultDifficulty, "Leading zeros required of a proof hash.")
	genesisCmd.Flags().Uint64Var(&gcfg.MiningReward, "mining-reward", genesis.DefaultMiningReward, "Reward for sealing a block.")
	genesisCmd.Flags().Uint64Var(&gcfg.FaucetReward, "faucet-reward", genesis.DefaultFaucetReward, "Credit issued by the faucet.")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Validate a chain file from genesis to head",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Infow("verify", "chain", chainPath)
			return commands.Verify(cmd.OutOrStdout(), genesisPath, chainPath)
		},
	}

	balancesCmd := &cobra.Command{
		Use:   "bals [account]",
		Short: "Replay a chain file and print the balances",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.Balances(cmd.OutOrStdout(), genesisPath, chainPath, firstArg(args))
		},
	}

	transactionsCmd := &cobra.Command{
		Use:   "trans [account]",
		Short: "Print the transactions of a chain file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.Transactions(cmd.OutOrStdout(), genesisPath, chainPath, firstArg(args))
		},
	}

	root.AddCommand(genesisCmd, verifyCmd, balancesCmd, transactionsCmd)

	return root.Execute()
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
