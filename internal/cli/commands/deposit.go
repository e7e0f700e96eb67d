package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDepositCmd creates the deposit command
func NewDepositCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit money into your account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
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

			balance, err := apiClient.Deposit(cmd.Context(), amount)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Deposited %s. New balance: %s\n", formatCents(amount), formatCents(balance))
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}
