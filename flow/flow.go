// Package flow implements the orchestration patterns that drive agents for
// one user turn: fan-out + synthesize (FanOut), classify-then-branch (Branch)
// and single-pass respond (Single). Every pattern declares a static Plan at
// construction; a run never invokes more agents than the plan allows.
package flow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/telemetry"
	"github.com/hupe1980/agentrelay/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Flow is an orchestrator: it turns one user input into one display string.
type Flow interface {
	Name() string
	Plan() Plan
	Run(ctx context.Context, input string) (string, error)
}

// Plan is the static shape of a flow, fixed at construction.
type Plan struct {
	Calls      int  // Maximum number of agent invocations per run
	Branch     bool // Whether the flow takes a branch decision
	Synthesize bool // Whether results are aggregated into a synthesizer call
}

// stateLimits splits the plan's calls over the run states: a synthesizer
// gets exactly one call, everything else runs in StateRunning.
func (p Plan) stateLimits() map[core.State]int {
	if p.Synthesize {
		return map[core.State]int{core.StateRunning: p.Calls - 1, core.StateSynthesize: 1}
	}
	return map[core.State]int{core.StateRunning: p.Calls}
}

// runLogger is implemented by loggers offering the run helper.
type runLogger interface {
	LogRun(flow string, calls int, dur time.Duration, err error)
}

// scopedLogger narrows a RelayLogger to a run; other loggers pass through.
func scopedLogger(l logging.Logger, runID, pattern string) logging.Logger {
	if rl, ok := l.(*logging.RelayLogger); ok {
		return rl.WithComponent("flow").WithRun(runID, pattern)
	}
	return l
}

// begin creates the Orchestration Run and its span.
func begin(ctx context.Context, name, pattern string, plan Plan, logger logging.Logger) (context.Context, *core.Run, trace.Span) {
	id := uuid.NewString()
	run := core.NewRun(pattern, plan.Calls, func(o *core.RunOptions) {
		o.ID = id
		o.Logger = scopedLogger(logger, id, pattern)
		o.StateLimits = plan.stateLimits()
	})

	ctx, span := telemetry.Tracer().Start(ctx, "flow.run", trace.WithAttributes(
		attribute.String("flow.name", name),
		attribute.String("flow.pattern", pattern),
		attribute.String("run.id", run.ID()),
	))

	return ctx, run, span
}

// finish records the outcome of run on the span and in the log.
func finish(name string, run *core.Run, span trace.Span, start time.Time, err error, logger logging.Logger) {
	defer span.End()

	span.SetAttributes(attribute.Int("run.calls", run.Calls()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if rl, ok := scopedLogger(logger, run.ID(), run.Pattern()).(runLogger); ok {
		rl.LogRun(name, run.Calls(), time.Since(start), err)
		return
	}

	if err != nil {
		logger.Error("flow.run.error", "flow", name, "run", run.ID(), "calls", run.Calls(), "error", err.Error())
		return
	}

	logger.Debug("flow.run.complete", "flow", name, "run", run.ID(), "calls", run.Calls())
}

func nonNilLogger(l logging.Logger) logging.Logger {
	if l == nil {
		return logging.NoOpLogger{}
	}
	return l
}
