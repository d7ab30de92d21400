package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultSecretsFile is where the Gemini key is looked up when no
// environment variable carries it.
const DefaultSecretsFile = ".secrets/guardian.toml"

// Config holds all expense-guardian configuration.
type Config struct {
	// HTTP server
	Port string

	// Credential resolution
	SecretsFile string

	// Receipt uploads
	MaxUploadBytes int64

	// Financial coach
	CoachDelay time.Duration
}

// Load builds the configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		SecretsFile:    getEnv("SECRETS_FILE", DefaultSecretsFile),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 10<<20),
		CoachDelay:     getEnvDuration("COACH_DELAY", 2*time.Second),
	}
}

// Validate returns an error describing every invalid setting.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid max upload size %d: must be positive", c.MaxUploadBytes)
	}
	if c.CoachDelay < 0 {
		return fmt.Errorf("invalid coach delay %v: must not be negative", c.CoachDelay)
	}

	return nil
}

// secrets is the shape of the local secrets file.
type secrets struct {
	GeminiAPIKey string `toml:"gemini_api_key"`
}

// ResolveAPIKey resolves the Gemini credential: the API_KEY env var
// first, then GEMINI_API_KEY, then the secrets file. An empty result is
// not an error; the analyzer degrades without a key.
func (c *Config) ResolveAPIKey() string {
	if v := os.Getenv("API_KEY"); v != "" {
		return v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}

	var s secrets
	if _, err := toml.DecodeFile(c.SecretsFile, &s); err != nil {
		return ""
	}
	return s.GeminiAPIKey
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
