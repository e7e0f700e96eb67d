package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and manage your profile",
	}

	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileSetEmailCmd())
	cmd.AddCommand(newProfileChangePasswordCmd())
	cmd.AddCommand(newProfileVerifyEmailCmd())
	cmd.AddCommand(newProfileDeleteCmd())

	return cmd
}

func newProfileShowCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			profile, err := apiClient.Profile(cmd.Context())
			if err != nil {
				return err
			}

			verified := "no"
			if profile.EmailVerified {
				verified = "yes"
			}

			fmt.Printf("Username:       %s\n", profile.Username)
			fmt.Printf("Email:          %s\n", profile.Email)
			fmt.Printf("Email verified: %s\n", verified)
			fmt.Printf("Roles:          %s\n", strings.Join(profile.Roles, ", "))
			fmt.Printf("Member since:   %s\n", profile.CreatedAt.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newProfileSetEmailCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "set-email <email>",
		Short: "Update your email address",
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

			if err := apiClient.UpdateEmail(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Printf("✓ Email updated to %s\n", args[0])
			fmt.Println("Run 'bankd profile verify-email' to verify it.")
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newProfileChangePasswordCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			if !term.IsTerminal(int(syscall.Stdin)) {
				return fmt.Errorf("change-password requires an interactive terminal")
			}

			fmt.Print("Current password: ")
			current, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			fmt.Println()

			fmt.Print("New password: ")
			next, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			fmt.Println()

			fmt.Print("Confirm new password: ")
			confirm, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			fmt.Println()

			if string(next) != string(confirm) {
				return fmt.Errorf("passwords do not match")
			}

			if err := apiClient.ChangePassword(cmd.Context(), string(current), string(next)); err != nil {
				return err
			}

			fmt.Println("✓ Password changed")
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newProfileVerifyEmailCmd() *cobra.Command {
	var serverAlias, code string

	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Request or confirm email verification",
		Long: `Request or confirm email verification.

Without --code, a new verification code is requested.
With --code, the given code is submitted for confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, apiClient := newSession(cmd.Context(), server)
			if _, err := requireAuthenticated(manager); err != nil {
				return err
			}

			if code == "" {
				if err := apiClient.RequestEmailVerification(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("✓ Verification code sent")
				fmt.Println("Confirm with: bankd profile verify-email --code <code>")
				return nil
			}

			if err := apiClient.ConfirmEmailVerification(cmd.Context(), code); err != nil {
				return err
			}
			fmt.Println("✓ Email verified")
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Verification code")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func newProfileDeleteCmd() *cobra.Command {
	var serverAlias string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Close your account",
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

			if !yes {
				fmt.Printf("This permanently closes the account of %s. Type the username to confirm: ", profile.Username)
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read confirmation: %w", err)
				}
				if strings.TrimSpace(line) != profile.Username {
					return fmt.Errorf("confirmation did not match, aborting")
				}
			}

			if err := apiClient.DeleteAccount(cmd.Context()); err != nil {
				return err
			}

			// The account is gone; drop the local session too
			manager.Logout(cmd.Context())

			fmt.Println("✓ Account closed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}
