package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show the account summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			profile, err := requireAuthenticated(manager)
			if err != nil {
				return err
			}

			// Re-fetch so the numbers are current, not the login-time copy
			account, err := apiClient.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Account summary for %s\n\n", profile.Username)
			fmt.Printf("  Account number:         %s\n", account.AccountNumber)
			fmt.Printf("  Balance:                %s\n", formatCents(account.Balance))
			fmt.Printf("  Daily withdrawal limit: %s\n", formatCents(account.DailyWithdrawalLimit))
			fmt.Printf("  Daily transfer limit:   %s\n", formatCents(account.DailyTransferLimit))
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}
