package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/bankd-dev/bankd/internal/cli/auth"
	"github.com/bankd-dev/bankd/internal/cli/client"
)

// State is the session lifecycle state
type State int

const (
	// StateLoading is the initial state, before the first derivation of
	// session state has completed. Guards must not treat it as final.
	StateLoading State = iota
	// StateAnonymous means no valid session exists
	StateAnonymous
	// StateAuthenticated means a Profile is present
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time read of session state
type Snapshot struct {
	State   State
	Profile *Profile
}

// Manager owns session state and is its only writer. Consumers read
// snapshots via Current; login, logout and initialization are the only
// transitions.
type Manager struct {
	tokens auth.TokenStore
	client *client.Client
	loader *Loader

	mu      sync.Mutex
	state   State
	profile *Profile
}

// NewManager creates a session manager starting in StateLoading and wires
// itself up as the client's auth-failure handler, so a 401 anywhere resets
// the session.
func NewManager(c *client.Client, tokens auth.TokenStore) *Manager {
	m := &Manager{
		tokens: tokens,
		client: c,
		loader: NewLoader(c, tokens),
		state:  StateLoading,
	}
	c.SetAuthFailureHandler(m.Invalidate)
	return m
}

// Current returns the current session snapshot
func (m *Manager) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{State: m.state, Profile: m.profile}
}

// Initialize derives session state from the stored token. It always leaves
// the manager in a final state: Authenticated when the token is present and
// the loader succeeds, Anonymous otherwise.
func (m *Manager) Initialize(ctx context.Context) {
	profile, err := m.loader.Load(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateAnonymous
		m.profile = nil
		return
	}
	m.state = StateAuthenticated
	m.profile = profile
}

// Login performs the remote login, stores the returned token and adopts the
// loader's result. On any failure the state is Anonymous, the token store
// is left empty, and the error is surfaced to the caller.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	token, err := m.client.Login(ctx, username, password)
	if err != nil {
		m.setAnonymous()
		return err
	}

	if err := m.tokens.Save(token); err != nil {
		m.setAnonymous()
		return fmt.Errorf("failed to save session token: %w", err)
	}

	profile, err := m.loader.Load(ctx)
	if err != nil {
		// The token was written before the failure; it must not survive.
		_ = m.tokens.Clear()
		m.setAnonymous()
		return fmt.Errorf("login succeeded but the session could not be established: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAuthenticated
	m.profile = profile
	return nil
}

// Logout ends the session. The local teardown is synchronous and cannot
// fail; the server notification is best-effort.
func (m *Manager) Logout(ctx context.Context) {
	// Notify before clearing, while the token is still available.
	m.client.Logout(ctx)

	_ = m.tokens.Clear()
	m.setAnonymous()
}

// Invalidate resets the session after the client observed an authorization
// failure. The client has already cleared the stored token.
func (m *Manager) Invalidate() {
	m.setAnonymous()
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAnonymous
	m.profile = nil
}
