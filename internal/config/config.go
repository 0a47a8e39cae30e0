// Package config loads tribunal configuration from .tribunal/config.yaml
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all tribunal configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	LLM     LLMConfig     `yaml:"llm"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Trial   TrialConfig   `yaml:"trial"`
	Session SessionConfig `yaml:"session"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the completion service client.
type LLMConfig struct {
	// Provider selects the backend: gemini, openai, simulated.
	// An empty provider (or missing API key) falls back to simulated.
	Provider        string  `yaml:"provider"`
	APIKey          string  `yaml:"api_key"`
	Model           string  `yaml:"model"`
	BaseURL         string  `yaml:"base_url"`
	Timeout         string  `yaml:"timeout"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	Temperature     float64 `yaml:"temperature"`
}

// LedgerConfig configures the case ledger client.
type LedgerConfig struct {
	// Mode selects the backend: http or memory.
	Mode     string `yaml:"mode"`
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`

	// SettleDelay is how long to wait after a mutating call before the
	// ledger's reads are expected to reflect the write.
	SettleDelay string `yaml:"settle_delay"`

	// OwnerAddress identifies the ledger owner for privilege checks.
	OwnerAddress string `yaml:"owner_address"`
}

// TrialConfig configures the debate scheduler.
type TrialConfig struct {
	// TurnDelay paces consecutive speaking turns.
	TurnDelay string `yaml:"turn_delay"`

	// PollTick is the abort-poll resolution inside the turn delay.
	PollTick string `yaml:"poll_tick"`

	// ProfileDir optionally overrides the built-in agent profiles with
	// YAML files, watched for live reload.
	ProfileDir string `yaml:"profile_dir"`
}

// SessionConfig configures the assistant loop.
type SessionConfig struct {
	// MaxRounds bounds model round-trips per command.
	MaxRounds int `yaml:"max_rounds"`
}

// StoreConfig configures the transcript store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures categorized debug logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "tribunal",
		Version: "0.3.0",

		LLM: LLMConfig{
			Provider:        "simulated",
			Model:           "gemini-2.5-flash",
			Timeout:         "120s",
			MaxOutputTokens: 2048,
			Temperature:     0.7,
		},

		Ledger: LedgerConfig{
			Mode:        "memory",
			Timeout:     "30s",
			SettleDelay: "3s",
		},

		Trial: TrialConfig{
			TurnDelay: "1s",
			PollTick:  "100ms",
		},

		Session: SessionConfig{
			MaxRounds: 5,
		},

		Store: StoreConfig{
			Path: ".tribunal/tribunal.db",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file path under the workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".tribunal", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating parent dirs.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TRIBUNAL_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("TRIBUNAL_LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("TRIBUNAL_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("TRIBUNAL_LEDGER_ENDPOINT"); v != "" {
		c.Ledger.Endpoint = v
		c.Ledger.Mode = "http"
	}
	if v := os.Getenv("TRIBUNAL_USER_ADDRESS"); v != "" {
		c.Ledger.OwnerAddress = v
	}
	if v := os.Getenv("TRIBUNAL_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// ParseDuration parses a duration field, falling back to def when the
// field is empty or malformed. Config durations are advisory, never fatal.
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
