package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := getSelectedServer(serverAlias)
			if err != nil {
				return err
			}

			manager, _ := newSession(cmd.Context(), server)
			profile, err := requireAuthenticated(manager)
			if err != nil {
				return err
			}

			fmt.Printf("User:    %s\n", profile.Username)
			fmt.Printf("Roles:   %s\n", strings.Join(profile.Roles, ", "))
			fmt.Printf("Account: %s\n", profile.Account.AccountNumber)
			fmt.Printf("Server:  %s (%s)\n", server.Alias, server.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from bankd.json")

	return cmd
}
