package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTransferCmd creates the transfer command
func NewTransferCmd() *cobra.Command {
	var serverAlias, description string

	cmd := &cobra.Command{
		Use:   "transfer <account-number> <amount>",
		Short: "Transfer money to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			toAccount := args[0]
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			result, err := apiClient.Transfer(cmd.Context(), toAccount, amount, description)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Transferred %s to account %s\n", formatCents(amount), toAccount)
			fmt.Printf("  Reference: %s\n", result.Reference)
			fmt.Printf("  New balance: %s\n", formatCents(result.Balance))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Optional transfer description")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}
