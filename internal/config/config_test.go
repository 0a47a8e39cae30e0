package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "simulated", cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.Session.MaxRounds)
	assert.Equal(t, "memory", cfg.Ledger.Mode)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
llm:
  provider: gemini
  model: gemini-2.5-pro
ledger:
  mode: http
  endpoint: http://localhost:9090
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:9090", cfg.Ledger.Endpoint)
	// Untouched sections keep defaults.
	assert.Equal(t, "1s", cfg.Trial.TurnDelay)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: ["), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRIBUNAL_LLM_PROVIDER", "openai")
	t.Setenv("TRIBUNAL_LLM_API_KEY", "sk-test")
	t.Setenv("TRIBUNAL_LEDGER_ENDPOINT", "http://ledger:8545")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "http", cfg.Ledger.Mode)
	assert.Equal(t, "http://ledger:8545", cfg.Ledger.Endpoint)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.LLM.Model = "custom-model"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-model", loaded.LLM.Model)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, time.Second, ParseDuration("", time.Second))
	assert.Equal(t, time.Second, ParseDuration("garbage", time.Second))
	assert.Equal(t, 250*time.Millisecond, ParseDuration("250ms", time.Second))
}
