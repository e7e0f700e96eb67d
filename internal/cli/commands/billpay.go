package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewPayeeCmd creates the payee command group
func NewPayeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payee",
		Short: "Manage bill-payment payees",
	}

	cmd.AddCommand(newPayeeListCmd())
	cmd.AddCommand(newPayeeAddCmd())

	return cmd
}

func newPayeeListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List registered payees",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			payees, err := apiClient.Payees(cmd.Context())
			if err != nil {
				return err
			}

			if len(payees) == 0 {
				fmt.Println("No payees registered.")
				fmt.Println("\nAdd one with: bankd payee add <name> <account-number>")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tACCOUNT")
			fmt.Fprintln(w, "──\t────\t───────")
			for _, p := range payees {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.AccountNumber)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newPayeeAddCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "add <name> <account-number>",
		Short: "Register a new payee",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			payee, err := apiClient.CreatePayee(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("✓ Registered payee %s (%s)\n", payee.Name, payee.AccountNumber)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

// NewBillPayCmd creates the billpay command group
func NewBillPayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billpay",
		Short: "Pay bills immediately or on a schedule",
	}

	cmd.AddCommand(newBillPayListCmd())
	cmd.AddCommand(newBillPayPayCmd())

	return cmd
}

func newBillPayListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List bill payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			payments, err := apiClient.BillPayments(cmd.Context())
			if err != nil {
				return err
			}

			if len(payments) == 0 {
				fmt.Println("No bill payments.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PAYEE\tAMOUNT\tSTATUS\tSCHEDULED\tEXECUTED")
			fmt.Fprintln(w, "─────\t──────\t──────\t─────────\t────────")
			for _, p := range payments {
				scheduled := "-"
				if p.ScheduledFor != nil {
					scheduled = p.ScheduledFor.Format("2006-01-02 15:04")
				}
				executed := "-"
				if p.ExecutedAt != nil {
					executed = p.ExecutedAt.Format("2006-01-02 15:04")
				}
				status := p.Status
				if p.FailReason != "" {
					status = fmt.Sprintf("%s (%s)", p.Status, p.FailReason)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Payee, formatCents(p.Amount), status, scheduled, executed)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newBillPayPayCmd() *cobra.Command {
	var serverAlias, scheduledFor string

	cmd := &cobra.Command{
		Use:   "pay <payee-id> <amount>",
		Short: "Pay a bill now, or schedule it with --at",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			var at *time.Time
			if scheduledFor != "" {
				parsed, err := time.Parse(time.RFC3339, scheduledFor)
				if err != nil {
					return fmt.Errorf("invalid --at value, use RFC3339 (e.g. 2026-10-01T09:00:00Z): %w", err)
				}
				at = &parsed
			}

			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			payment, err := apiClient.PayBill(cmd.Context(), args[0], amount, at)
			if err != nil {
				return err
			}

			if payment.Status == "scheduled" {
				fmt.Printf("✓ Payment of %s to %s scheduled for %s\n",
					formatCents(amount), payment.Payee, payment.ScheduledFor.Format("2006-01-02 15:04"))
			} else {
				fmt.Printf("✓ Paid %s to %s\n", formatCents(amount), payment.Payee)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scheduledFor, "at", "", "Schedule the payment for a future time (RFC3339)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}
