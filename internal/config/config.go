// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates supportq configuration from TOML,
// with environment variable overrides for deployment settings and
// credentials. Configuration is read once at startup; there is no
// runtime reload.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// TYPES
// =============================================================================

// Config is the root configuration.
type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Classify ClassifyConfig `toml:"classify"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
}

// LLMConfig configures the completion endpoint used for fallback
// classification. Endpoint, deployment, and key normally arrive via
// environment variables rather than the file.
type LLMConfig struct {
	Endpoint    string  `toml:"endpoint"`
	APIKey      string  `toml:"api_key"`
	APIVersion  string  `toml:"api_version"`
	Deployment  string  `toml:"deployment"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	MaxRetries  int     `toml:"max_retries"`
	TimeoutSecs int     `toml:"timeout_secs"`
}

// ClassifyConfig tunes classification behavior.
type ClassifyConfig struct {
	// ConfidenceThreshold is the rule confidence at or above which the
	// LLM is never consulted.
	ConfidenceThreshold float64 `toml:"confidence_threshold"`

	// MultiIntentThreshold is the score a secondary category needs to
	// register as a distinct intent.
	MultiIntentThreshold float64 `toml:"multi_intent_threshold"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			APIVersion:  "2024-02-15-preview",
			MaxTokens:   150,
			Temperature: 0.3,
			MaxRetries:  3,
			TimeoutSecs: 60,
		},
		Classify: ClassifyConfig{
			ConfidenceThreshold:  0.7,
			MultiIntentThreshold: 0.5,
		},
		Server: ServerConfig{
			Port:      8080,
			RateLimit: 10,
			Burst:     20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the supportq configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".supportq"), nil
}

// ConfigPath returns the default configuration file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the default path, falling back to
// defaults when the file does not exist. Environment overrides apply in
// both cases.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads configuration from an explicit path. A missing file
// is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No file is fine; run on defaults.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults backfills zero values a partial file left unset.
func (c *Config) fillDefaults() {
	d := Default()
	if c.LLM.APIVersion == "" {
		c.LLM.APIVersion = d.LLM.APIVersion
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = d.LLM.MaxTokens
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = d.LLM.Temperature
	}
	if c.LLM.MaxRetries == 0 {
		c.LLM.MaxRetries = d.LLM.MaxRetries
	}
	if c.LLM.TimeoutSecs == 0 {
		c.LLM.TimeoutSecs = d.LLM.TimeoutSecs
	}
	if c.Classify.ConfidenceThreshold == 0 {
		c.Classify.ConfidenceThreshold = d.Classify.ConfidenceThreshold
	}
	if c.Classify.MultiIntentThreshold == 0 {
		c.Classify.MultiIntentThreshold = d.Classify.MultiIntentThreshold
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = d.Server.RateLimit
	}
	if c.Server.Burst == 0 {
		c.Server.Burst = d.Server.Burst
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variables over file values.
// Credentials are expected to arrive this way; checking API keys into a
// config file is discouraged.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("AZURE_OPENAI_ENDPOINT"); v != "" {
		c.LLM.Endpoint = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("AZURE_OPENAI_DEPLOYMENT"); v != "" {
		c.LLM.Deployment = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_VERSION"); v != "" {
		c.LLM.APIVersion = v
	}
	if v := os.Getenv("SUPPORTQ_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SUPPORTQ_LOG_JSON"); v != "" {
		c.Logging.JSON = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SUPPORTQ_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SUPPORTQ_CONFIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Classify.ConfidenceThreshold = f
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks field ranges. LLM credentials are deliberately not
// required: the classifier runs rules-only without them.
func (c *Config) Validate() error {
	var errs []error

	if c.Classify.ConfidenceThreshold < 0 || c.Classify.ConfidenceThreshold > 1 {
		errs = append(errs, ValidationError{"classify.confidence_threshold", "must be between 0 and 1"})
	}
	if c.Classify.MultiIntentThreshold < 0 || c.Classify.MultiIntentThreshold > 1 {
		errs = append(errs, ValidationError{"classify.multi_intent_threshold", "must be between 0 and 1"})
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{"server.port", "must be between 1 and 65535"})
	}
	if c.Server.RateLimit <= 0 {
		errs = append(errs, ValidationError{"server.rate_limit", "must be positive"})
	}
	if c.Server.Burst < 1 {
		errs = append(errs, ValidationError{"server.burst", "must be at least 1"})
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, ValidationError{"llm.temperature", "must be between 0 and 2"})
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, ValidationError{"llm.max_retries", "must not be negative"})
	}
	if c.LLM.TimeoutSecs < 1 {
		errs = append(errs, ValidationError{"llm.timeout_secs", "must be at least 1"})
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{"logging.level", "must be debug, info, warn, or error"})
	}

	return errors.Join(errs...)
}

// LLMConfigured reports whether the fallback classifier can be built.
func (c *Config) LLMConfigured() bool {
	return c.LLM.Endpoint != "" && c.LLM.APIKey != "" && c.LLM.Deployment != ""
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default path, creating the
// directory as needed. The file is written 0600 since it may carry an
// API key.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// SetGlobal installs the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = cfg
}

// Global returns the process-wide configuration, loading defaults on
// first use if nothing was installed.
func Global() *Config {
	globalMu.RLock()
	if globalCfg != nil {
		defer globalMu.RUnlock()
		return globalCfg
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalCfg == nil {
		globalCfg = Default()
	}
	return globalCfg
}
