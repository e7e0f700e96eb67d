package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bankd-dev/bankd/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "bankd",
	Short: "Bankd - Online banking from the command line",
	Long: `Bankd CLI - Manage your bank account from the terminal.

Authenticate once with 'bankd login'; the session token is stored in the
OS keychain and attached to every subsequent command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bankd version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
	rootCmd.AddCommand(commands.NewSignupCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewDashboardCmd())
	rootCmd.AddCommand(commands.NewTransactionsCmd())
	rootCmd.AddCommand(commands.NewDepositCmd())
	rootCmd.AddCommand(commands.NewWithdrawCmd())
	rootCmd.AddCommand(commands.NewTransferCmd())
	rootCmd.AddCommand(commands.NewPayeeCmd())
	rootCmd.AddCommand(commands.NewBillPayCmd())
	rootCmd.AddCommand(commands.NewLoanCmd())
	rootCmd.AddCommand(commands.NewProfileCmd())
	rootCmd.AddCommand(commands.NewAdminCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
