package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/telemetry"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Options configures an Agent instance.
//
// Use functional options with New to override defaults.
type Options struct {
	// Description is a human readable summary of the agent's role.
	Description string
	// Logger receives one entry per completion call.
	Logger logging.Logger
	// Timeout bounds a single completion call. Zero means no timeout.
	Timeout time.Duration
}

// completionLogger is implemented by loggers offering the domain helper.
type completionLogger interface {
	LogCompletion(agent, model string, dur time.Duration, err error)
}

// Agent binds a name and fixed instructions to a completion backend.
// It holds no mutable state and is safe for concurrent use.
type Agent struct {
	name         string
	description  string
	instructions string
	llm          model.Model
	logger       logging.Logger
	timeout      time.Duration
}

// New creates an Agent. The instructions are captured once and never change.
func New(name, instructions string, llm model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Description: fmt.Sprintf("Agent %s", name),
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Agent{
		name:         name,
		description:  opts.Description,
		instructions: instructions,
		llm:          llm,
		logger:       opts.Logger,
		timeout:      opts.Timeout,
	}
}

// Name returns the human-readable name for this agent.
func (a *Agent) Name() string { return a.name }

// Description returns a detailed description of this agent's purpose.
func (a *Agent) Description() string { return a.description }

// Instructions returns the fixed instruction string.
func (a *Agent) Instructions() string { return a.instructions }

// Model returns the completion backend shared with other agents.
func (a *Agent) Model() model.Model { return a.llm }

// Run sends input to the backend under this agent's instructions. It returns
// either non-empty text or a *core.ProviderError.
func (a *Agent) Run(ctx context.Context, input string) (string, error) {
	info := a.llm.Info()

	ctx, span := telemetry.Tracer().Start(ctx, "agent.run", trace.WithAttributes(
		attribute.String("agent.name", a.name),
		attribute.String("model.name", info.Name),
		attribute.String("model.provider", info.Provider),
	))
	defer span.End()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := model.Complete(ctx, a.llm, a.instructions, input)
	a.logCompletion(info.Name, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", core.NewProviderError(a.name, err)
	}

	return text, nil
}

func (a *Agent) logCompletion(modelName string, dur time.Duration, err error) {
	if cl, ok := a.logger.(completionLogger); ok {
		cl.LogCompletion(a.name, modelName, dur, err)
		return
	}

	if err != nil {
		a.logger.Warn("agent.run.error", "agent", a.name, "model", modelName, "error", err.Error())
		return
	}

	a.logger.Debug("agent.run.complete", "agent", a.name, "model", modelName, "duration", dur)
}
