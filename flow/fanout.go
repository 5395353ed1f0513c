package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"golang.org/x/sync/errgroup"
)

// Field pairs a specialist agent with the label its answer is reported under.
type Field struct {
	Label string
	Agent core.Agent
}

// FanOutOptions configures a FanOut flow.
type FanOutOptions struct {
	// Concurrent issues the specialist calls in parallel. Results are still
	// reassembled in declared field order before synthesis.
	Concurrent bool
	// Logger receives run level entries.
	Logger logging.Logger
}

// FanOut runs N independent specialists on the same input, joins their
// answers into one intermediate string and hands it to a synthesizer.
//
// The first specialist failure aborts the run; the synthesizer is then never
// invoked. A synthesizer failure fails the whole run as well.
type FanOut struct {
	name        string
	subject     string
	fields      []Field
	synthesizer core.Agent
	concurrent  bool
	logger      logging.Logger
}

// NewFanOut creates a fan-out + synthesize flow. subject labels the user
// input inside the intermediate string (e.g. "Country").
func NewFanOut(name, subject string, fields []Field, synthesizer core.Agent, optFns ...func(o *FanOutOptions)) *FanOut {
	opts := FanOutOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	fs := make([]Field, len(fields))
	copy(fs, fields)

	return &FanOut{
		name:        name,
		subject:     subject,
		fields:      fs,
		synthesizer: synthesizer,
		concurrent:  opts.Concurrent,
		logger:      nonNilLogger(opts.Logger),
	}
}

// Name returns the flow name.
func (f *FanOut) Name() string { return f.name }

// Plan implements Flow: every specialist plus one synthesizer call.
func (f *FanOut) Plan() Plan {
	return Plan{Calls: len(f.fields) + 1, Synthesize: true}
}

// Run implements Flow.
func (f *FanOut) Run(ctx context.Context, input string) (string, error) {
	start := time.Now()
	ctx, run, span := begin(ctx, f.name, "fanout", f.Plan(), f.logger)

	out, err := f.execute(ctx, run, input)
	finish(f.name, run, span, start, err, f.logger)

	return out, err
}

func (f *FanOut) execute(ctx context.Context, run *core.Run, input string) (string, error) {
	if len(f.fields) == 0 || f.synthesizer == nil {
		return "", run.Fail(errors.New("fanout requires at least one field and a synthesizer"))
	}

	if err := run.Transition(core.StateRunning); err != nil {
		return "", run.Fail(err)
	}

	values, err := f.collect(ctx, run, input)
	if err != nil {
		return "", run.Fail(err)
	}

	if err := run.Transition(core.StateSynthesize); err != nil {
		return "", run.Fail(err)
	}

	out, err := run.Invoke(ctx, f.synthesizer, f.Compose(input, values))
	if err != nil {
		return "", run.Fail(fmt.Errorf("synthesis failed: %w", err))
	}

	if err := run.Complete(); err != nil {
		return "", err
	}

	return out, nil
}

// collect gathers the specialists' answers in declared field order.
func (f *FanOut) collect(ctx context.Context, run *core.Run, input string) ([]string, error) {
	values := make([]string, len(f.fields))

	if !f.concurrent {
		for i, fld := range f.fields {
			v, err := run.Invoke(ctx, fld.Agent, input)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", fld.Label, err)
			}
			values[i] = strings.TrimSpace(v)
		}
		return values, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, fld := range f.fields {
		g.Go(func() error {
			v, err := run.Invoke(gctx, fld.Agent, input)
			if err != nil {
				return fmt.Errorf("field %s: %w", fld.Label, err)
			}
			values[i] = strings.TrimSpace(v)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return values, nil
}

// Compose builds the intermediate string handed to the synthesizer:
// "<Subject>: <input>, <Label1>: <value1>, ...". values must be in field order.
func (f *FanOut) Compose(input string, values []string) string {
	parts := make([]string, 0, len(f.fields)+1)
	parts = append(parts, fmt.Sprintf("%s: %s", f.subject, input))

	for i, fld := range f.fields {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fld.Label, v))
	}

	return strings.Join(parts, ", ")
}
