// Package config holds the explicit runtime configuration for the
// MedEasy MCP server. Everything that used to be ambient state in the
// original service (backend base URL, timezone, credentials) is read
// once at startup and passed into components at construction — there is
// no package-level mutable state.
package config

import (
	"fmt"
	"os"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	// DefaultTimezone is the timezone all schedule reconciliation runs
	// in. The backend stores times-of-day without offsets, so the
	// server must agree with it on a zone.
	DefaultTimezone = "Asia/Seoul"

	// DefaultOpenAIModel is the model used for fuzzy schedule-name
	// matching.
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultTimeout bounds every outbound call (backend API and
	// text-matching service).
	DefaultTimeout = 20 * time.Second

	// DefaultRedisAddr is the voice-settings store address.
	DefaultRedisAddr = "localhost:6379"
)

// Config carries everything the server needs to construct its
// collaborators. Build one with FromEnv, or fill it directly in tests.
type Config struct {
	// MedeasyAPIURL is the base URL of the medication backend,
	// e.g. "https://api.medeasy.dev".
	MedeasyAPIURL string

	// OpenAIAPIKey authenticates the text-matching service. When empty,
	// the server still starts: matching degrades to the deterministic
	// normalizer.
	OpenAIAPIKey string

	// OpenAIModel is the chat model used for name matching.
	OpenAIModel string

	// RedisAddr and RedisPassword configure the expiring key-value
	// store backing voice settings.
	RedisAddr     string
	RedisPassword string

	// TokenSecret is the HS256 secret shared with the backend's token
	// issuer. Identity extraction fails closed without it.
	TokenSecret string

	// Timezone is the IANA name resolved into Location by Load.
	Timezone string

	// Timeout bounds each outbound HTTP call.
	Timeout time.Duration

	// Location is the resolved timezone. Set by Load.
	Location *time.Location
}

// FromEnv reads configuration from the environment and resolves the
// timezone. It returns an error only for conditions that make the
// server unusable: a missing backend URL or an unknown timezone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		MedeasyAPIURL: os.Getenv("MEDEASY_API_URL"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", DefaultOpenAIModel),
		RedisAddr:     envOr("REDIS_ADDR", DefaultRedisAddr),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		TokenSecret:   os.Getenv("TOKEN_SECRET_KEY"),
		Timezone:      envOr("MEDEASY_TIMEZONE", DefaultTimezone),
		Timeout:       DefaultTimeout,
	}

	if v := os.Getenv("MEDEASY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing MEDEASY_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load validates the config and resolves the timezone into Location.
// Tests that build a Config by hand call this before use.
func (c *Config) Load() error {
	if c.MedeasyAPIURL == "" {
		return fmt.Errorf("MEDEASY_API_URL is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
