package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load consults; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, b := range bindings {
		for _, name := range b.envs {
			t.Setenv(name, "")
		}
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Completion.Provider)
	assert.Equal(t, 0.7, cfg.Completion.Temperature)
	assert.Equal(t, int64(1024), cfg.Completion.MaxTokens)
	assert.Equal(t, time.Duration(0), cfg.Completion.Timeout)
	assert.False(t, cfg.Flow.Concurrent)
	assert.False(t, cfg.Trace)

	mc := cfg.Model()
	assert.Equal(t, openai.DefaultModel, mc.Model)
	assert.Equal(t, openai.DefaultBaseURL, mc.BaseURL)
	assert.Empty(t, mc.APIKey, "missing credential is not a load error")
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("AGENTRELAY_PROVIDER", " Anthropic ")
	t.Setenv("AGENTRELAY_MODEL", "claude-3-5-haiku-latest")
	t.Setenv("AGENTRELAY_TEMPERATURE", "0.2")
	t.Setenv("AGENTRELAY_MAX_TOKENS", "256")
	t.Setenv("AGENTRELAY_TIMEOUT", "30s")
	t.Setenv("AGENTRELAY_CONCURRENT", "true")
	t.Setenv("AGENTRELAY_TRACE", "1")

	cfg, err := Load()
	require.NoError(t, err)

	mc := cfg.Model()
	assert.Equal(t, "anthropic", mc.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", mc.Model)
	assert.Empty(t, mc.BaseURL)
	assert.Equal(t, "gem-key", mc.APIKey)
	require.NotNil(t, mc.Temperature)
	assert.Equal(t, 0.2, *mc.Temperature)
	assert.Equal(t, int64(256), mc.MaxTokens)
	assert.Equal(t, 30*time.Second, mc.Timeout)
	assert.True(t, cfg.Flow.Concurrent)
	assert.True(t, cfg.Trace)
}

func TestLoad_APIKeyPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("AGENTRELAY_API_KEY", "relay-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "relay-key", cfg.Completion.APIKey)
}

func TestLoadFromPath_EnvFile(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "GEMINI_API_KEY=file-key\nAGENTRELAY_MAX_TOKENS=512\nAGENTRELAY_LOG_LEVEL=debug\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Completion.APIKey)
	assert.Equal(t, int64(512), cfg.Completion.MaxTokens)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromPath_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")
	path := writeEnvFile(t, "GEMINI_API_KEY=file-key\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Completion.APIKey)
}

func TestLoadFromPath_FileKeyPrecedence(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "AGENTRELAY_API_KEY=relay-key\nGEMINI_API_KEY=gem-key\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "relay-key", cfg.Completion.APIKey)
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading env file")
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("log level", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AGENTRELAY_LOG_LEVEL", "chatty")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("temperature", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AGENTRELAY_TEMPERATURE", "warm")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshaling config")
	})
}

func TestConfig_Logger(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "error", Format: "json"}}

	l := cfg.Logger()
	require.NotNil(t, l)

	var _ logging.Logger = l
}

func TestConfig_ModelKeepsExplicitEndpoint(t *testing.T) {
	cfg := &Config{Completion: CompletionConfig{Provider: "openai", Model: "gpt-4o-mini", BaseURL: "http://localhost:8080/v1"}}

	mc := cfg.Model()
	assert.Equal(t, "gpt-4o-mini", mc.Model)
	assert.Equal(t, "http://localhost:8080/v1", mc.BaseURL)
}

func TestLoad_ZeroTemperatureIsKept(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENTRELAY_TEMPERATURE", "0")

	cfg, err := Load()
	require.NoError(t, err)

	mc := cfg.Model()
	require.NotNil(t, mc.Temperature)
	assert.Equal(t, 0.0, *mc.Temperature)
}
