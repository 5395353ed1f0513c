// Package agentrelay provides a small façade over the shared completion
// backend, the agents built on it and the bundled demo flows. Most
// applications interact with this package by:
//  1. Loading a config.Config (defaults, optional .env, environment)
//  2. Creating an AgentRelay via New()
//  3. Building agents (NewAgent) or a ready demo flow and running it
//
// Every agent created through one AgentRelay shares the same model, so the
// provider is configured exactly once per process.
package agentrelay

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/config"
	"github.com/hupe1980/agentrelay/demo"
	"github.com/hupe1980/agentrelay/flow"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/provider"
)

// Options configures the AgentRelay instance.
type Options struct {
	// Model replaces the provider built from config (e.g. a model.MockModel).
	Model model.Model
	// Logger defaults to the logger described by config.
	Logger logging.Logger
}

// AgentRelay aggregates the shared model, logger and config.
type AgentRelay struct {
	cfg    *config.Config
	model  model.Model
	logger logging.Logger
}

// New creates an AgentRelay from cfg. A missing credential is not an error;
// it surfaces on the first completion call.
func New(ctx context.Context, cfg *config.Config, optFns ...func(o *Options)) (*AgentRelay, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = cfg.Logger()
	}

	if opts.Model == nil {
		m, err := provider.New(ctx, cfg.Model())
		if err != nil {
			return nil, fmt.Errorf("create model: %w", err)
		}
		opts.Model = m
	}

	return &AgentRelay{cfg: cfg, model: opts.Model, logger: opts.Logger}, nil
}

// Model returns the shared completion backend.
func (r *AgentRelay) Model() model.Model { return r.model }

// Logger returns the shared logger.
func (r *AgentRelay) Logger() logging.Logger { return r.logger }

// Config returns the configuration the instance was built from.
func (r *AgentRelay) Config() *config.Config { return r.cfg }

// NewAgent creates an agent on the shared model.
func (r *AgentRelay) NewAgent(name, instructions string) *agent.Agent {
	return agent.New(name, instructions, r.model, func(o *agent.Options) {
		o.Logger = r.logger
		o.Timeout = r.cfg.Completion.Timeout
	})
}

// CountryInfo returns the fan-out country info demo flow.
func (r *AgentRelay) CountryInfo() *flow.FanOut {
	return demo.NewCountryInfo(r.model, r.demoOptions)
}

// MoodHandoff returns the classify-then-branch mood demo flow.
func (r *AgentRelay) MoodHandoff() *flow.Branch {
	return demo.NewMoodHandoff(r.model, r.demoOptions)
}

// ProductSuggest returns the single-pass product suggestion demo flow.
func (r *AgentRelay) ProductSuggest() *flow.Single {
	return demo.NewProductSuggest(r.model, r.demoOptions)
}

func (r *AgentRelay) demoOptions(o *demo.Options) {
	o.Logger = r.logger
	o.Concurrent = r.cfg.Flow.Concurrent
	o.Timeout = r.cfg.Completion.Timeout
}

// Close releases the model's resources if it holds any.
func (r *AgentRelay) Close() error {
	if c, ok := r.model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
