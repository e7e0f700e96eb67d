// Package session owns the client-side authentication session: who is
// logged in, derived from the stored token and the identity and
// account-summary endpoints. All consumers read session state through the
// Manager's snapshot; nothing re-derives it from storage mid-flow.
package session

import (
	"strings"

	"github.com/bankd-dev/bankd/internal/cli/client"
)

// RoleAdmin is the sentinel role granting access to the admin console
const RoleAdmin = "ROLE_ADMIN"

// Profile is the session subject: identity and account summary merged into
// one object. It exists only while the session is authenticated and is
// discarded wholesale on logout.
type Profile struct {
	Username string
	Roles    []string // canonicalized to upper case
	Account  client.AccountSummary
}

// NewProfile merges an identity and an account summary. Roles default to
// an empty set and are canonicalized so later comparisons are exact.
func NewProfile(identity *client.Identity, account *client.AccountSummary) *Profile {
	roles := make([]string, 0, len(identity.Roles))
	for _, r := range identity.Roles {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, strings.ToUpper(r))
		}
	}

	return &Profile{
		Username: identity.Username,
		Roles:    roles,
		Account:  *account,
	}
}

// HasRole reports whether the profile holds the given role, ignoring case
func (p *Profile) HasRole(role string) bool {
	want := strings.ToUpper(role)
	for _, r := range p.Roles {
		if r == want {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the profile holds the admin sentinel role
func (p *Profile) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
