// Package guard gates access to protected views based on the current
// session snapshot. Guards are pure predicates: they never perform I/O and
// never fail, they only decide.
package guard

import (
	"github.com/bankd-dev/bankd/internal/cli/session"
)

// Decision is the outcome of evaluating a guard against a snapshot
type Decision int

const (
	// Wait means session state is still loading; render nothing yet.
	// Guarded content must never appear before the session is resolved.
	Wait Decision = iota
	// Allow means the guarded content may be rendered
	Allow
	// RedirectLogin means no session exists; send the user to login
	RedirectLogin
	// RedirectHome means the session is valid but lacks the required
	// role; send the user home, not to login
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// RequireAuthenticated admits any authenticated session
func RequireAuthenticated(snapshot session.Snapshot) Decision {
	switch snapshot.State {
	case session.StateLoading:
		return Wait
	case session.StateAuthenticated:
		return Allow
	default:
		return RedirectLogin
	}
}

// RequireAdmin admits authenticated sessions holding the admin role. An
// authenticated non-admin is redirected home: the user is valid, just not
// authorized.
func RequireAdmin(snapshot session.Snapshot) Decision {
	switch snapshot.State {
	case session.StateLoading:
		return Wait
	case session.StateAuthenticated:
		if snapshot.Profile != nil && snapshot.Profile.HasRole(session.RoleAdmin) {
			return Allow
		}
		return RedirectHome
	default:
		return RedirectLogin
	}
}
