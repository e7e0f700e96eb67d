package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewAdminCmd creates the admin command group
func NewAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations (requires the admin role)",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}
	users.AddCommand(newAdminUsersListCmd())
	users.AddCommand(newAdminUsersCreateCmd())
	users.AddCommand(newAdminUsersDeleteCmd())

	loans := &cobra.Command{
		Use:   "loans",
		Short: "Review loan applications",
	}
	loans.AddCommand(newAdminLoansListCmd())
	loans.AddCommand(newAdminLoansApproveCmd())
	loans.AddCommand(newAdminLoansRejectCmd())

	cmd.AddCommand(users)
	cmd.AddCommand(loans)

	return cmd
}

func newAdminUsersListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAdmin(manager); err != nil {
				return err
			}

			users, err := apiClient.AdminUsers(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLES\tCREATED")
			fmt.Fprintln(w, "──\t────────\t─────\t─────\t───────")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					u.ID, u.Username, u.Email, strings.Join(u.Roles, ","), u.CreatedAt.Format("2006-01-02"))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newAdminUsersCreateCmd() *cobra.Command {
	var serverAlias, email string
	var admin bool

	cmd := &cobra.Command{
		Use:   "create <username> <password>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAdmin(manager); err != nil {
				return err
			}

			roles := []string{"ROLE_USER"}
			if admin {
				roles = append(roles, "ROLE_ADMIN")
			}

			user, err := apiClient.AdminCreateUser(cmd.Context(), args[0], args[1], email, roles)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Created user %s (%s)\n", user.Username, strings.Join(user.Roles, ","))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin role")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newAdminUsersDeleteCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAdmin(manager); err != nil {
				return err
			}

			if err := apiClient.AdminDeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Printf("✓ Deleted user %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newAdminLoansListCmd() *cobra.Command {
	var serverAlias, status string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List loan applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAdmin(manager); err != nil {
				return err
			}

			loans, err := apiClient.AdminLoans(cmd.Context(), status)
			if err != nil {
				return err
			}

			if len(loans) == 0 {
				fmt.Println("No loans found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSER\tPRINCIPAL\tTERM\tSTATUS")
			fmt.Fprintln(w, "──\t────\t─────────\t────\t──────")
			for _, l := range loans {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d mo\t%s\n",
					l.ID, l.Username, formatCents(l.Principal), l.TermMonths, l.Status)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "pending", "Filter by status (pending, approved, rejected, active)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newAdminLoansApproveCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "approve <loan-id>",
		Short: "Approve a pending loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAdmin(manager); err != nil {
				return err
			}

			loan, err := apiClient.AdminApproveLoan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✓ Approved loan %s (%s). Disbursement is queued.\n", loan.ID, formatCents(loan.Principal))
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newAdminLoansRejectCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "reject <loan-id>",
		Short: "Reject a pending loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAdmin(manager); err != nil {
				return err
			}

			loan, err := apiClient.AdminRejectLoan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("✓ Rejected loan %s\n", loan.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}
