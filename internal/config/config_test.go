// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults: %v", err)
	}
	if cfg.Classify.ConfidenceThreshold != 0.7 {
		t.Errorf("confidence threshold = %v, want 0.7", cfg.Classify.ConfidenceThreshold)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadFromPathPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[classify]
confidence_threshold = 0.8

[server]
port = 9000
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Classify.ConfidenceThreshold != 0.8 {
		t.Errorf("confidence threshold = %v, want 0.8", cfg.Classify.ConfidenceThreshold)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	// Unset fields backfill from defaults.
	if cfg.LLM.MaxTokens != 150 {
		t.Errorf("max_tokens = %d, want default 150", cfg.LLM.MaxTokens)
	}
	if cfg.Classify.MultiIntentThreshold != 0.5 {
		t.Errorf("multi_intent_threshold = %v, want default 0.5", cfg.Classify.MultiIntentThreshold)
	}
}

func TestLoadFromPathInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_API_KEY", "secret")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o-mini")
	t.Setenv("SUPPORTQ_PORT", "9999")
	t.Setenv("SUPPORTQ_CONFIDENCE_THRESHOLD", "0.65")
	t.Setenv("SUPPORTQ_LOG_LEVEL", "DEBUG")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.LLM.Endpoint != "https://example.openai.azure.com" {
		t.Errorf("endpoint = %q", cfg.LLM.Endpoint)
	}
	if !cfg.LLMConfigured() {
		t.Error("expected LLM configured after env overrides")
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Classify.ConfidenceThreshold != 0.65 {
		t.Errorf("threshold = %v, want 0.65", cfg.Classify.ConfidenceThreshold)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
}

func TestEnvOverrideBadValuesIgnored(t *testing.T) {
	t.Setenv("SUPPORTQ_PORT", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, unparseable override must be ignored", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Classify.ConfidenceThreshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Classify.ConfidenceThreshold = -0.1 }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }},
		{"temperature too hot", func(c *Config) { c.LLM.Temperature = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLLMConfiguredRequiresAllThree(t *testing.T) {
	cfg := Default()
	if cfg.LLMConfigured() {
		t.Error("empty LLM config must not count as configured")
	}
	cfg.LLM.Endpoint = "https://example.openai.azure.com"
	cfg.LLM.APIKey = "secret"
	if cfg.LLMConfigured() {
		t.Error("missing deployment must not count as configured")
	}
	cfg.LLM.Deployment = "gpt-4o-mini"
	if !cfg.LLMConfigured() {
		t.Error("expected configured")
	}
}

func TestGlobalFallsBackToDefault(t *testing.T) {
	SetGlobal(nil)
	cfg := Global()
	if cfg == nil || cfg.Server.Port != 8080 {
		t.Errorf("Global() = %+v", cfg)
	}
}
