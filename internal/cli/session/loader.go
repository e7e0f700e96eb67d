package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/bankd-dev/bankd/internal/cli/auth"
	"github.com/bankd-dev/bankd/internal/cli/client"
)

// ErrNoSession means no valid session could be derived: there is no stored
// token, or the server rejected it, or a session fetch failed. Callers must
// treat all causes identically.
var ErrNoSession = errors.New("no active session")

// Loader derives the session subject from the stored token. It is the one
// place that fetches and merges identity and account-summary data.
type Loader struct {
	tokens auth.TokenStore
	client *client.Client
}

// NewLoader creates a session loader
func NewLoader(c *client.Client, tokens auth.TokenStore) *Loader {
	return &Loader{tokens: tokens, client: c}
}

// Load fetches the identity and account summary and merges them into a
// Profile. Every failure mode collapses into ErrNoSession; no retries.
func (l *Loader) Load(ctx context.Context) (*Profile, error) {
	if _, err := l.tokens.Load(); err != nil {
		return nil, ErrNoSession
	}

	identity, err := l.client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	account, err := l.client.Dashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	return NewProfile(identity, account), nil
}
