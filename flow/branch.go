package flow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// Disposition is what a Branch does with a classified label.
type Disposition int

const (
	// Unrecognized labels end the run with the "not recognized" message.
	Unrecognized Disposition = iota
	// Acknowledge labels end the run with the static acknowledgment.
	Acknowledge
	// Remediate labels hand the original input to the remediation agent.
	Remediate
)

// String returns the lower-case disposition name.
func (d Disposition) String() string {
	switch d {
	case Acknowledge:
		return "acknowledge"
	case Remediate:
		return "remediate"
	default:
		return "unrecognized"
	}
}

// Label is one member of a closed classifier label set.
type Label interface {
	String() string
	Disposition() Disposition
}

// ParseFunc maps a normalized classifier output onto the closed label set.
// It returns a Label whose disposition is Unrecognized for anything else.
type ParseFunc func(normalized string) Label

// unknownLabel is used when a ParseFunc returns nil.
type unknownLabel string

func (u unknownLabel) String() string           { return string(u) }
func (u unknownLabel) Disposition() Disposition { return Unrecognized }

// Normalize trims surrounding whitespace and case-folds classifier output.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Outcome describes how a Branch run ended.
type Outcome struct {
	Label          Label  // Parsed label (never nil)
	Classification string // Normalized classifier output
	Text           string // Remediation output or static message
	Remediated     bool   // Whether the remediation agent was invoked
}

// BranchOptions configures a Branch flow.
type BranchOptions struct {
	// Acknowledgment is surfaced for labels with the Acknowledge disposition.
	Acknowledgment string
	// NotRecognized is surfaced when the classifier output is outside the label set.
	NotRecognized string
	// Render turns an Outcome into the display string returned by Run.
	Render func(Outcome) string
	// Logger receives run level entries.
	Logger logging.Logger
}

// Branch classifies the input with one agent and, depending on the label,
// either invokes a remediation agent with the original input or surfaces a
// static message.
type Branch struct {
	name           string
	classifier     core.Agent
	remediation    core.Agent
	parse          ParseFunc
	acknowledgment string
	notRecognized  string
	render         func(Outcome) string
	logger         logging.Logger
}

// NewBranch creates a classify-then-branch flow.
func NewBranch(name string, classifier, remediation core.Agent, parse ParseFunc, optFns ...func(o *BranchOptions)) *Branch {
	opts := BranchOptions{
		Acknowledgment: "You're doing well! Keep it up!",
		NotRecognized:  "Input not recognized. Try expressing it differently.",
		Render:         func(o Outcome) string { return o.Text },
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Branch{
		name:           name,
		classifier:     classifier,
		remediation:    remediation,
		parse:          parse,
		acknowledgment: opts.Acknowledgment,
		notRecognized:  opts.NotRecognized,
		render:         opts.Render,
		logger:         nonNilLogger(opts.Logger),
	}
}

// Name returns the flow name.
func (b *Branch) Name() string { return b.name }

// Plan implements Flow: one classifier call plus at most one remediation call.
func (b *Branch) Plan() Plan { return Plan{Calls: 2, Branch: true} }

// Run implements Flow by rendering the Outcome of Evaluate.
func (b *Branch) Run(ctx context.Context, input string) (string, error) {
	o, err := b.Evaluate(ctx, input)
	if err != nil {
		return "", err
	}

	if b.render == nil {
		return o.Text, nil
	}

	return b.render(o), nil
}

// Evaluate executes the branch and reports the full Outcome.
func (b *Branch) Evaluate(ctx context.Context, input string) (Outcome, error) {
	start := time.Now()
	ctx, run, span := begin(ctx, b.name, "branch", b.Plan(), b.logger)

	o, err := b.execute(ctx, run, input)
	finish(b.name, run, span, start, err, b.logger)

	return o, err
}

func (b *Branch) execute(ctx context.Context, run *core.Run, input string) (Outcome, error) {
	if b.classifier == nil || b.remediation == nil || b.parse == nil {
		return Outcome{}, run.Fail(errors.New("branch requires a classifier, a remediation agent and a parser"))
	}

	if err := run.Transition(core.StateRunning); err != nil {
		return Outcome{}, run.Fail(err)
	}

	raw, err := run.Invoke(ctx, b.classifier, input)
	if err != nil {
		return Outcome{}, run.Fail(err)
	}

	normalized := Normalize(raw)

	label := b.parse(normalized)
	if label == nil {
		label = unknownLabel(normalized)
	}

	if err := run.Transition(core.StateBranch); err != nil {
		return Outcome{}, run.Fail(err)
	}

	run.LogDebug("branch.decision", "label", label.String(), "disposition", label.Disposition().String())

	o := Outcome{Label: label, Classification: normalized}

	switch label.Disposition() {
	case Remediate:
		if err := run.Transition(core.StateRunning); err != nil {
			return Outcome{}, run.Fail(err)
		}

		text, err := run.Invoke(ctx, b.remediation, input)
		if err != nil {
			return Outcome{}, run.Fail(err)
		}

		o.Text = text
		o.Remediated = true
	case Acknowledge:
		o.Text = b.acknowledgment
	default:
		o.Text = b.notRecognized
	}

	if err := run.Complete(); err != nil {
		return Outcome{}, err
	}

	return o, nil
}
