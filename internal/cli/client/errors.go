package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrAuthorizationLost signals that an authenticated call was rejected with
// a 401. The client has already cleared the stored token and notified the
// session manager; the caller should direct the user back to login.
var ErrAuthorizationLost = errors.New("session expired")

// LoginError is a rejected credential submission. Message is safe to show
// to the user.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login failed: %s", e.Message)
}

// APIError is any other non-2xx response from the banking API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.StatusCode, e.Message)
}

// apiMessage extracts the user-facing message from an error body. The API
// uses "message"; older endpoints used "error".
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Err != "" {
			return payload.Err
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return "unexpected server response"
}
