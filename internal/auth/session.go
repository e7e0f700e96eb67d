package auth

import "strings"

// SessionData represents the authenticated session context for a request
type SessionData struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the session holds the given role, ignoring case
func (s *SessionData) HasRole(role string) bool {
	for _, r := range s.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
