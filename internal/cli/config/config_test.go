package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestServer_Host(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "https url",
			url:  "https://bank.example.com",
			want: "bank.example.com",
		},
		{
			name: "http url with port",
			url:  "http://localhost:8080",
			want: "localhost:8080",
		},
		{
			name: "url with path",
			url:  "https://bank.example.com/api",
			want: "bank.example.com",
		},
		{
			name: "bare host falls through",
			url:  "bank.example.com",
			want: "bank.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Server{URL: tt.url}
			if got := s.Host(); got != tt.want {
				t.Errorf("Host() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServer_Validate(t *testing.T) {
	tests := []struct {
		name        string
		server      Server
		shouldError bool
	}{
		{
			name:        "valid https",
			server:      Server{URL: "https://bank.example.com", Alias: "prod"},
			shouldError: false,
		},
		{
			name:        "valid http with port",
			server:      Server{URL: "http://localhost:8080", Alias: "local"},
			shouldError: false,
		},
		{
			name:        "empty url",
			server:      Server{URL: "", Alias: "prod"},
			shouldError: true,
		},
		{
			name:        "whitespace url",
			server:      Server{URL: "   ", Alias: "prod"},
			shouldError: true,
		},
		{
			name:        "missing scheme",
			server:      Server{URL: "bank.example.com", Alias: "prod"},
			shouldError: true,
		},
		{
			name:        "unsupported scheme",
			server:      Server{URL: "ftp://bank.example.com", Alias: "prod"},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.server.Validate()
			if tt.shouldError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.shouldError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	cfg := &Config{
		Servers: []Server{
			{URL: "https://bank.example.com", Alias: "prod"},
			{URL: "http://localhost:8080", Alias: "local"},
		},
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Servers) != 2 {
		t.Fatalf("got %d servers, want 2", len(loaded.Servers))
	}
	if loaded.Servers[0].Alias != "prod" || loaded.Servers[0].URL != "https://bank.example.com" {
		t.Errorf("first server = %+v", loaded.Servers[0])
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestGetServerByAlias(t *testing.T) {
	cfg := &Config{
		Servers: []Server{
			{URL: "https://bank.example.com", Alias: "prod"},
			{URL: "http://localhost:8080", Alias: "local"},
		},
	}

	server, err := cfg.GetServerByAlias("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.URL != "http://localhost:8080" {
		t.Errorf("url = %q", server.URL)
	}

	if _, err := cfg.GetServerByAlias("staging"); err == nil {
		t.Error("expected error for unknown alias")
	}
}

func TestGetDefaultServer(t *testing.T) {
	cfg := &Config{}
	if _, err := cfg.GetDefaultServer(); err == nil {
		t.Error("expected error for empty server list")
	}

	cfg.Servers = []Server{{URL: "https://bank.example.com", Alias: "prod"}}
	server, err := cfg.GetDefaultServer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.Alias != "prod" {
		t.Errorf("alias = %q", server.Alias)
	}
}
