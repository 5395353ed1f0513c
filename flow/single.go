package flow

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// SingleOptions configures a Single flow.
type SingleOptions struct {
	Logger logging.Logger
}

// Single is the degenerate pattern: exactly one agent call whose raw output
// is returned verbatim.
type Single struct {
	name   string
	agent  core.Agent
	logger logging.Logger
}

// NewSingle creates a single-pass flow.
func NewSingle(name string, agent core.Agent, optFns ...func(o *SingleOptions)) *Single {
	opts := SingleOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Single{name: name, agent: agent, logger: nonNilLogger(opts.Logger)}
}

// Name returns the flow name.
func (s *Single) Name() string { return s.name }

// Plan implements Flow.
func (s *Single) Plan() Plan { return Plan{Calls: 1} }

// Run implements Flow.
func (s *Single) Run(ctx context.Context, input string) (string, error) {
	start := time.Now()
	ctx, run, span := begin(ctx, s.name, "single", s.Plan(), s.logger)

	out, err := s.execute(ctx, run, input)
	finish(s.name, run, span, start, err, s.logger)

	return out, err
}

func (s *Single) execute(ctx context.Context, run *core.Run, input string) (string, error) {
	if s.agent == nil {
		return "", run.Fail(errors.New("single requires an agent"))
	}

	if err := run.Transition(core.StateRunning); err != nil {
		return "", run.Fail(err)
	}

	out, err := run.Invoke(ctx, s.agent, input)
	if err != nil {
		return "", run.Fail(err)
	}

	if err := run.Complete(); err != nil {
		return "", err
	}

	return out, nil
}
