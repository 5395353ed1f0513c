// Package provider builds the shared completion backend from a model.Config.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/model/anthropic"
	"github.com/hupe1980/agentrelay/model/gemini"
	"github.com/hupe1980/agentrelay/model/openai"
)

// Supported provider names.
const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Gemini    = "gemini"
	Mock      = "mock"
)

// New returns the Model described by cfg. A missing credential does not fail
// construction: the returned model reports core.ErrMissingAPIKey on its first
// call instead.
func New(ctx context.Context, cfg model.Config) (model.Model, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = OpenAI
	}

	if name != Mock && cfg.APIKey == "" {
		return model.Unavailable{
			Err:  core.ErrMissingAPIKey,
			Meta: model.Info{Name: cfg.Model, Provider: name},
		}, nil
	}

	switch name {
	case OpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.BaseURL != "" {
				o.BaseURL = cfg.BaseURL
			}
			if cfg.Temperature != nil {
				o.Temperature = *cfg.Temperature
			}
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = cfg.MaxTokens
			}
		}), nil
	case Anthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.BaseURL != "" {
				o.BaseURL = cfg.BaseURL
			}
			if cfg.Temperature != nil {
				o.Temperature = *cfg.Temperature
			}
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
		}), nil
	case Gemini:
		m, err := gemini.NewModel(ctx, func(o *gemini.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.BaseURL != "" {
				o.Endpoint = cfg.BaseURL
			}
			if cfg.Temperature != nil {
				o.Temperature = float32(*cfg.Temperature)
			}
			if cfg.MaxTokens > 0 {
				o.MaxOutputTokens = int32(cfg.MaxTokens)
			}
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case Mock:
		return model.NewMockModel(cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
