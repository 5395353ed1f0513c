// Package config loads agentrelay settings from defaults, an optional .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/model/openai"
)

// DefaultEnvFile is the dotenv file Load reads from the working directory.
const DefaultEnvFile = ".env"

// Config holds all configuration for agentrelay.
type Config struct {
	Completion CompletionConfig `mapstructure:"completion"`
	Flow       FlowConfig       `mapstructure:"flow"`
	Log        LogConfig        `mapstructure:"log"`
	Trace      bool             `mapstructure:"trace"`
}

// CompletionConfig describes the shared completion backend.
type CompletionConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int64         `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// FlowConfig holds orchestration toggles.
type FlowConfig struct {
	// Concurrent fans out independent agents in parallel.
	Concurrent bool `mapstructure:"concurrent"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// binding maps a config key to the environment (and .env) names feeding it.
// Earlier names win.
type binding struct {
	key  string
	envs []string
}

var bindings = []binding{
	{"completion.provider", []string{"AGENTRELAY_PROVIDER"}},
	{"completion.model", []string{"AGENTRELAY_MODEL"}},
	{"completion.base_url", []string{"AGENTRELAY_BASE_URL"}},
	{"completion.api_key", []string{"AGENTRELAY_API_KEY", "GEMINI_API_KEY"}},
	{"completion.temperature", []string{"AGENTRELAY_TEMPERATURE"}},
	{"completion.max_tokens", []string{"AGENTRELAY_MAX_TOKENS"}},
	{"completion.timeout", []string{"AGENTRELAY_TIMEOUT"}},
	{"flow.concurrent", []string{"AGENTRELAY_CONCURRENT"}},
	{"log.level", []string{"AGENTRELAY_LOG_LEVEL"}},
	{"log.format", []string{"AGENTRELAY_LOG_FORMAT"}},
	{"trace", []string{"AGENTRELAY_TRACE"}},
}

// Load reads ./.env when present and the process environment.
func Load() (*Config, error) {
	return load(DefaultEnvFile, false)
}

// LoadFromPath is like Load but reads the dotenv file at path, which must exist.
func LoadFromPath(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, required bool) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		if err := mergeEnvFile(v, path, required); err != nil {
			return nil, err
		}
	}

	for _, b := range bindings {
		args := append([]string{b.key}, b.envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", b.key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Completion.Provider = strings.ToLower(strings.TrimSpace(cfg.Completion.Provider))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("completion.provider", "openai")
	v.SetDefault("completion.temperature", 0.7)
	v.SetDefault("completion.max_tokens", 1024)
	v.SetDefault("completion.timeout", time.Duration(0))
	v.SetDefault("flow.concurrent", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("trace", false)
}

// mergeEnvFile reads a dotenv file and merges its values below the process
// environment.
func mergeEnvFile(v *viper.Viper, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("reading env file: %w", err)
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")

	if err := dotenv.ReadInConfig(); err != nil {
		return fmt.Errorf("reading env file: %w", err)
	}

	settings := map[string]any{}

	for _, b := range bindings {
		// Iterate in reverse so the first listed name wins.
		for i := len(b.envs) - 1; i >= 0; i-- {
			name := strings.ToLower(b.envs[i])
			if !dotenv.IsSet(name) {
				continue
			}
			setNested(settings, b.key, dotenv.GetString(name))
		}
	}

	if err := v.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("merging env file: %w", err)
	}

	return nil
}

func setNested(m map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		child, ok := m[p].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[p] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = value
}

// Model returns the completion backend configuration. The OpenAI-compatible
// provider defaults to the Gemini endpoint and model.
func (c *Config) Model() model.Config {
	temperature := c.Completion.Temperature

	mc := model.Config{
		Provider:    c.Completion.Provider,
		Model:       c.Completion.Model,
		BaseURL:     c.Completion.BaseURL,
		APIKey:      c.Completion.APIKey,
		Temperature: &temperature,
		MaxTokens:   c.Completion.MaxTokens,
		Timeout:     c.Completion.Timeout,
	}

	if mc.Provider == "" || mc.Provider == "openai" {
		if mc.Model == "" {
			mc.Model = openai.DefaultModel
		}
		if mc.BaseURL == "" {
			mc.BaseURL = openai.DefaultBaseURL
		}
	}

	return mc
}

// Logger builds the process logger. Output goes to stderr.
func (c *Config) Logger() *logging.RelayLogger {
	level, _ := logging.ParseLevel(c.Log.Level)

	cfg := logging.DefaultLoggerConfig()
	cfg.Level = level
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}

	return logging.NewLogger(cfg)
}
