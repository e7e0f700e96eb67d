package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewTransactionsCmd creates the transactions command
func NewTransactionsCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List recent transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			transactions, err := apiClient.Transactions(cmd.Context())
			if err != nil {
				return err
			}

			if len(transactions) == 0 {
				fmt.Println("No transactions yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tBALANCE\tDESCRIPTION")
			fmt.Fprintln(w, "────\t────\t──────\t───────\t───────────")

			for _, tx := range transactions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					tx.CreatedAt.Format("2006-01-02 15:04"),
					tx.Type,
					formatCents(tx.Amount),
					formatCents(tx.BalanceAfter),
					tx.Description,
				)
			}

			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}
