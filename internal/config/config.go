// Package config provides environment-driven configuration for the corral
// server, with an optional YAML file layered underneath.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL          Secret
	Port                 string
	ListenHost           string
	CORSOrigins          []string
	LogLevel             string
	AdminKey             Secret
	DBMaxConns           int
	AuditQueueSize       int
	MatchCaseInsensitive bool
}

// Load reads configuration from environment variables, falling back to an
// optional YAML file (corral.yaml in the working directory or /etc/corral,
// or the file named by CONFIG_FILE), then to built-in defaults. Environment
// variables always win.
func Load() (*Config, error) {
	src, err := readFile()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL: Secret(src.get("DATABASE_URL", "database_url", "")),
		Port:        src.get("PORT", "port", "8080"),
		ListenHost:  src.get("LISTEN_HOST", "listen_host", "127.0.0.1"),
		LogLevel:    src.get("LOG_LEVEL", "log_level", "info"),
		AdminKey:    Secret(src.get("ADMIN_KEY", "admin_key", "")),
	}

	maxConns, err := strconv.Atoi(src.get("DB_MAX_CONNS", "db_max_conns", "21"))
	if err != nil || maxConns < 2 || maxConns > 200 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be an integer between 2 and 200")
	}
	cfg.DBMaxConns = maxConns

	queueSize, err := strconv.Atoi(src.get("AUDIT_QUEUE_SIZE", "audit_queue_size", "1000"))
	if err != nil || queueSize < 1 || queueSize > 100000 {
		return nil, fmt.Errorf("AUDIT_QUEUE_SIZE must be an integer between 1 and 100000")
	}
	cfg.AuditQueueSize = queueSize

	insensitive, err := strconv.ParseBool(src.get("MATCH_CASE_INSENSITIVE", "match_case_insensitive", "false"))
	if err != nil {
		return nil, fmt.Errorf("MATCH_CASE_INSENSITIVE must be a boolean")
	}
	cfg.MatchCaseInsensitive = insensitive

	origins := src.get("CORS_ORIGINS", "cors_origins", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}
