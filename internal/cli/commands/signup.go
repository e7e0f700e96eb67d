package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bankd-dev/bankd/internal/cli/auth"
	"github.com/bankd-dev/bankd/internal/cli/client"
	"github.com/bankd-dev/bankd/internal/cli/session"
)

// NewSignupCmd creates the signup command
func NewSignupCmd() *cobra.Command {
	var username, password, email, serverAlias string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account on a bankd server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(cmd, username, password, email, serverAlias)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set BANKD_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set BANKD_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}

func runSignup(cmd *cobra.Command, username, password, email, serverAlias string) error {
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

	if password == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or BANKD_PASSWORD env var)")
		}
		fmt.Print("Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		fmt.Print("Confirm password: ")
		byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		if string(bytePassword) != string(byteConfirm) {
			return fmt.Errorf("passwords do not match")
		}
		password = string(bytePassword)
	}

	tokens := auth.NewKeyringStore(server.Host())
	apiClient := client.New(server.URL, tokens)

	fmt.Printf("Creating account on %s (%s)...\n", server.Alias, server.URL)

	token, err := apiClient.Signup(cmd.Context(), username, password, email)
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	if err := tokens.Save(token); err != nil {
		return fmt.Errorf("account created but the session token could not be saved: %w", err)
	}

	manager := session.NewManager(apiClient, tokens)
	manager.Initialize(cmd.Context())

	profile := manager.Current().Profile
	fmt.Println("✓ Account created!")
	if profile != nil {
		fmt.Printf("  User: %s\n", profile.Username)
		fmt.Printf("  Account: %s\n", profile.Account.AccountNumber)
	}

	return nil
}
