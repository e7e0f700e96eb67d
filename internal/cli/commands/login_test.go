package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/bankd-dev/bankd/internal/cli/config"
)

// setupTestEnvironment creates a temporary directory with a bankd.json
func setupTestEnvironment(t *testing.T, servers []config.Server) (string, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "bankd-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	cfg := config.Config{
		Servers: servers,
	}
	cfgData, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}

	cfgPath := filepath.Join(tempDir, "bankd.json")
	if err := os.WriteFile(cfgPath, cfgData, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}

	cleanup := func() {
		os.Chdir(originalDir)
		os.RemoveAll(tempDir)
	}

	return tempDir, cleanup
}

func TestLoginCommand_Structure(t *testing.T) {
	cmd := NewLoginCmd()

	if cmd.Use != "login" {
		t.Errorf("expected Use to be 'login', got %s", cmd.Use)
	}

	for _, flag := range []string{"username", "password", "server"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag to exist", flag)
		}
	}
}

func TestLoginCommand_MissingUsername(t *testing.T) {
	servers := []config.Server{
		{Alias: "test-server", URL: "http://127.0.0.1:1"},
	}
	_, cleanup := setupTestEnvironment(t, servers)
	defer cleanup()

	os.Unsetenv("BANKD_USERNAME")
	os.Unsetenv("BANKD_PASSWORD")

	err := runLogin(&cobra.Command{}, "", "password123", "")
	if err == nil {
		t.Fatal("expected error when username is missing, got nil")
	}

	expectedError := "username is required (use --username flag or BANKD_USERNAME env var)"
	if err.Error() != expectedError {
		t.Errorf("expected error '%s', got '%s'", expectedError, err.Error())
	}
}

func TestLoginCommand_NoConfigFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "bankd-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	originalDir, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(originalDir)

	err = runLogin(&cobra.Command{}, "alice", "password123", "")
	if err == nil {
		t.Fatal("expected error when config file is missing, got nil")
	}

	if err.Error()[:22] != "failed to load config:" {
		t.Errorf("expected error to start with 'failed to load config:', got '%s'", err.Error())
	}
}

func TestLoginCommand_EmptyServerURL(t *testing.T) {
	servers := []config.Server{
		{Alias: "test-server", URL: ""},
	}
	_, cleanup := setupTestEnvironment(t, servers)
	defer cleanup()

	err := runLogin(&cobra.Command{}, "alice", "password123", "")
	if err == nil {
		t.Fatal("expected error when server URL is empty, got nil")
	}
}

func TestLoginCommand_UnknownServerAlias(t *testing.T) {
	servers := []config.Server{
		{Alias: "test-server", URL: "http://127.0.0.1:1"},
	}
	_, cleanup := setupTestEnvironment(t, servers)
	defer cleanup()

	err := runLogin(&cobra.Command{}, "alice", "password123", "staging")
	if err == nil {
		t.Fatal("expected error for unknown server alias, got nil")
	}
}
