package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bankd-dev/bankd/internal/cli/auth"
	"github.com/bankd-dev/bankd/internal/cli/client"
	"github.com/bankd-dev/bankd/internal/cli/config"
	"github.com/bankd-dev/bankd/internal/cli/guard"
	"github.com/bankd-dev/bankd/internal/cli/serverselect"
	"github.com/bankd-dev/bankd/internal/cli/session"
)

// getSelectedServer loads the config and returns the selected server.
// This is common logic used by most commands.
func getSelectedServer(serverAlias string) (*config.Server, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'bankd init' to create a configuration file", err)
	}

	server, err := serverselect.ResolveServer(cfg, serverAlias)
	if err != nil {
		return nil, err
	}

	if err := server.Validate(); err != nil {
		return nil, fmt.Errorf("%w. Please edit bankd.json", err)
	}

	return server, nil
}

// newSession builds the API client and session manager for a server and
// derives the initial session state from the stored token.
func newSession(ctx context.Context, server *config.Server) (*session.Manager, *client.Client) {
	tokens := auth.NewKeyringStore(server.Host())
	apiClient := client.New(server.URL, tokens)
	manager := session.NewManager(apiClient, tokens)
	manager.Initialize(ctx)
	return manager, apiClient
}

// requireAuthenticated evaluates the authentication guard and returns the
// profile, or an actionable error when the session does not admit access.
func requireAuthenticated(manager *session.Manager) (*session.Profile, error) {
	snapshot := manager.Current()
	switch guard.RequireAuthenticated(snapshot) {
	case guard.Allow:
		return snapshot.Profile, nil
	default:
		return nil, fmt.Errorf("not logged in. Run 'bankd login' first")
	}
}

// requireAdmin evaluates the admin guard and returns the profile, or an
// error distinguishing a missing session from a missing role.
func requireAdmin(manager *session.Manager) (*session.Profile, error) {
	snapshot := manager.Current()
	switch guard.RequireAdmin(snapshot) {
	case guard.Allow:
		return snapshot.Profile, nil
	case guard.RedirectHome:
		return nil, fmt.Errorf("admin access required")
	default:
		return nil, fmt.Errorf("not logged in. Run 'bankd login' first")
	}
}

// parseAmount converts a dollar string like "100" or "100.50" to cents.
// Amounts are always handled in integer cents; floats never touch money.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}

	dollars := s
	cents := "00"
	if i := strings.IndexByte(s, '.'); i >= 0 {
		dollars = s[:i]
		cents = s[i+1:]
		if len(cents) > 2 {
			return 0, fmt.Errorf("invalid amount '%s': at most two decimal places", s)
		}
		for len(cents) < 2 {
			cents += "0"
		}
	}
	if dollars == "" {
		dollars = "0"
	}

	d, err := strconv.ParseInt(dollars, 10, 64)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid amount '%s'", s)
	}
	c, err := strconv.ParseInt(cents, 10, 64)
	if err != nil || c < 0 {
		return 0, fmt.Errorf("invalid amount '%s'", s)
	}

	total := d*100 + c
	if total <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	return total, nil
}

// formatCents renders an integer cent amount as dollars
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
