// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultPort          = 8080
	DefaultDatabasePath  = "torba.sqlite3"
	DefaultExpiresHours  = 8
	DefaultAdminUsername = "admin"
)

// Config is the complete server configuration. It is built once at startup
// and passed to the components that need it.
type Config struct {
	Port          int
	DatabasePath  string
	JWTSecret     string // empty means use the secret persisted in the database
	JWTExpiry     time.Duration
	AdminUsername string
	AdminPassword string
	LogFile       string
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads envFile if it exists and then builds the configuration from the
// process environment. Variables already set in the environment take
// precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the configuration from a variable lookup function.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		DatabasePath:  get("DATABASE_PATH", DefaultDatabasePath),
		JWTSecret:     get("JWT_SECRET", ""),
		AdminUsername: get("ADMIN_USERNAME", DefaultAdminUsername),
		LogFile:       get("LOG_FILE", ""),
	}
	// Passwords are taken verbatim.
	cfg.AdminPassword, _ = lookup("ADMIN_PASSWORD")

	port, err := strconv.Atoi(get("PORT", strconv.Itoa(DefaultPort)))
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT must be a number between 1 and 65535")
	}
	cfg.Port = port

	hours, err := strconv.Atoi(get("JWT_EXPIRES_HOURS", strconv.Itoa(DefaultExpiresHours)))
	if err != nil || hours < 1 {
		return nil, fmt.Errorf("JWT_EXPIRES_HOURS must be a positive whole number")
	}
	cfg.JWTExpiry = time.Duration(hours) * time.Hour

	return cfg, nil
}
