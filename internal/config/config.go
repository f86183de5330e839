// Package config loads server configuration from the environment.
//
// A .env file in the working directory is loaded first (if present) so local
// development doesn't need exported variables; real deployments set the
// environment directly and ship no .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads at startup.
//
// DatabasePath and JWTSecret are optional on purpose: the server starts
// without them, and the affected routes fail with a 500-class error instead
// of the process refusing to boot. This mirrors how the rest of the app
// treats the store as an optional dependency.
type Config struct {
	Port         int
	DatabasePath string // empty = no store; data routes return 500
	JWTSecret    string // empty = session issuance/validation return 500
	LogLevel     string

	// Google Sign-In. ClientID is the audience for ID-token verification;
	// the secret and callback are only needed for the server-side redirect flow.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

// Load reads configuration from a .env file (if any) and the process
// environment. Environment variables win over .env values because godotenv
// never overwrites an existing variable.
func Load() (*Config, error) {
	// Missing .env is the normal production case, not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               8080,
		DatabasePath:       os.Getenv("DATABASE_PATH"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if cfg.GoogleCallbackURL == "" {
		cfg.GoogleCallbackURL = fmt.Sprintf("http://localhost:%d/auth/google/callback", cfg.Port)
	}

	return cfg, nil
}
