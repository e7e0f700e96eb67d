package commands

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bankd-dev/bankd/internal/cli/client"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var username, password, serverAlias string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a bankd server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, username, password, serverAlias)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set BANKD_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set BANKD_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func runLogin(cmd *cobra.Command, username, password, serverAlias string) error {
	// Check for environment variables (useful for scripting)
	if username == "" {
		username = os.Getenv("BANKD_USERNAME")
	}
	if password == "" {
		password = os.Getenv("BANKD_PASSWORD")
	}

	if username == "" {
		return fmt.Errorf("username is required (use --username flag or BANKD_USERNAME env var)")
	}

	server, err := getSelectedServer(serverAlias)
	if err != nil {
		return err
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or BANKD_PASSWORD env var)")
		}
	}

	manager, _ := newSession(cmd.Context(), server)

	fmt.Printf("Logging in to %s (%s)...\n", server.Alias, server.URL)

	if err := manager.Login(cmd.Context(), username, password); err != nil {
		var loginErr *client.LoginError
		if errors.As(err, &loginErr) {
			return fmt.Errorf("login failed: %s", loginErr.Message)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	profile := manager.Current().Profile

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s\n", profile.Username)
	fmt.Printf("  Account: %s (balance %s)\n", profile.Account.AccountNumber, formatCents(profile.Account.Balance))
	if profile.IsAdmin() {
		fmt.Println("  Role: Admin")
	}

	return nil
}
