// Package auth persists the session bearer token in the OS keychain or
// credential manager. The token is the only durable piece of auth state on
// the client; validity is decided solely by server responses.
package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "bankd-cli"
)

// ErrNotAuthenticated is returned when no token is stored for the server
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'bankd login' first")

// keyringKey returns the fixed storage key for a server's token
func keyringKey(serverHost string) string {
	return fmt.Sprintf("jwt-%s", serverHost)
}

// SaveToken persists the bearer token securely in the OS keychain
func SaveToken(serverHost, token string) error {
	if err := keyring.Set(service, keyringKey(serverHost), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken retrieves the bearer token from the OS keychain
func LoadToken(serverHost string) (string, error) {
	token, err := keyring.Get(service, keyringKey(serverHost))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotAuthenticated
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// DeleteToken removes the bearer token from the OS keychain. Deleting an
// absent token is not an error.
func DeleteToken(serverHost string) error {
	if err := keyring.Delete(service, keyringKey(serverHost)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
