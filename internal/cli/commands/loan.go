package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewLoanCmd creates the loan command group
func NewLoanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Apply for and inspect loans",
	}

	cmd.AddCommand(newLoanListCmd())
	cmd.AddCommand(newLoanApplyCmd())
	cmd.AddCommand(newLoanScheduleCmd())

	return cmd
}

func newLoanListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List your loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			loans, err := apiClient.Loans(cmd.Context())
			if err != nil {
				return err
			}

			if len(loans) == 0 {
				fmt.Println("No loans.")
				fmt.Println("\nApply with: bankd loan apply <amount> <term-months>")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRINCIPAL\tRATE\tTERM\tMONTHLY\tSTATUS")
			fmt.Fprintln(w, "──\t─────────\t────\t────\t───────\t──────")
			for _, l := range loans {
				fmt.Fprintf(w, "%s\t%s\t%.2f%%\t%d mo\t%s\t%s\n",
					l.ID,
					formatCents(l.Principal),
					float64(l.AnnualRateBps)/100,
					l.TermMonths,
					formatCents(l.MonthlyPayment),
					l.Status,
				)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newLoanApplyCmd() *cobra.Command {
	var serverAlias, purpose string

	cmd := &cobra.Command{
		Use:   "apply <amount> <term-months>",
		Short: "Apply for a loan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			termMonths, err := strconv.Atoi(args[1])
			if err != nil || termMonths < 1 {
				return fmt.Errorf("invalid term '%s': must be a positive number of months", args[1])
			}

			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			loan, err := apiClient.ApplyForLoan(cmd.Context(), amount, termMonths, purpose)
			if err != nil {
				return err
			}

			fmt.Println("✓ Loan application submitted")
			fmt.Printf("  Principal:       %s\n", formatCents(loan.Principal))
			fmt.Printf("  Rate:            %.2f%% APR\n", float64(loan.AnnualRateBps)/100)
			fmt.Printf("  Term:            %d months\n", loan.TermMonths)
			fmt.Printf("  Monthly payment: %s\n", formatCents(loan.MonthlyPayment))
			fmt.Println("\nThe loan is pending review by the bank.")
			return nil
		},
	}

	cmd.Flags().StringVar(&purpose, "purpose", "", "What the loan is for")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newLoanScheduleCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "schedule <loan-id>",
		Short: "Show a loan's repayment schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			result, err := apiClient.LoanSchedule(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Repayment schedule for loan %s (%s at %.2f%% APR)\n\n",
				result.Loan.ID, formatCents(result.Loan.Principal), float64(result.Loan.AnnualRateBps)/100)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tDUE\tPAYMENT\tPRINCIPAL\tINTEREST\tBALANCE")
			fmt.Fprintln(w, "─\t───\t───────\t─────────\t────────\t───────")
			for _, inst := range result.Schedule {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					inst.Number,
					inst.DueDate.Format("2006-01-02"),
					formatCents(inst.Payment),
					formatCents(inst.Principal),
					formatCents(inst.Interest),
					formatCents(inst.Balance),
				)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}
