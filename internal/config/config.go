// Package config loads server configuration from a .env file (when
// present) and the process environment.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is everything cmd/server needs to wire the process.
type Config struct {
	// Port the HTTP server listens on.
	Port string
	// Store selects the persistence backend: "memory" or "postgres".
	Store string
	// DatabaseURL is the postgres DSN; required when Store is
	// "postgres".
	DatabaseURL string
	// KafkaBrokers is a comma-separated broker list; empty disables
	// event publishing.
	KafkaBrokers []string
	// LogMode selects zap config: "prod" or "dev".
	LogMode string
}

// Load reads .env (ignored when missing) and then the environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:        getenv("PORT", "8080"),
		Store:       getenv("STORE", "memory"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogMode:     getenv("LOG_MODE", "dev"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
