package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the API server and worker
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
	Seed     SeedConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration for the task queue
type RedisConfig struct {
	Address string // host:port
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// SeedConfig points at an optional YAML file with demo users and accounts
type SeedConfig struct {
	File string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return &Config{
		Server: ServerConfig{
			ListenAddr: envOr("LISTEN_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			URL: envOr("DATABASE_URL", "bankd.sqlite"),
		},
		Redis: RedisConfig{
			Address: envOr("REDIS_ADDRESS", "localhost:6379"),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
		Seed: SeedConfig{
			File: os.Getenv("SEED_FILE"),
		},
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
