package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/agentrelay/logging"
)

// State is a step of the orchestration state machine shared by every pattern.
type State int

const (
	// StateStart is the initial state before any agent is invoked.
	StateStart State = iota
	// StateRunning means specialist / classifier / remediation agents are executing.
	StateRunning
	// StateBranch means the single branch decision is being taken.
	StateBranch
	// StateSynthesize means aggregated results are being passed to a synthesizer.
	StateSynthesize
	// StateDone is the terminal success state.
	StateDone
	// StateFailed is the absorbing failure state.
	StateFailed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateRunning:
		return "running"
	case StateBranch:
		return "branch"
	case StateSynthesize:
		return "synthesize"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

var allowedTransitions = map[State][]State{
	StateStart:      {StateRunning, StateFailed},
	StateRunning:    {StateRunning, StateBranch, StateSynthesize, StateDone, StateFailed},
	StateBranch:     {StateRunning, StateDone, StateFailed},
	StateSynthesize: {StateDone, StateFailed},
}

func canTransition(from, to State) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Run is one Orchestration Run: the invocations of a single user turn plus its
// state machine. It is created per turn and discarded afterwards. Invoke is
// safe for concurrent use.
type Run struct {
	*loggerAdapter

	id      string
	pattern string
	budget  *CallBudget

	mu          sync.Mutex
	state       State
	history     []State
	invocations []Invocation
	err         error
}

// RunOptions configures a Run.
type RunOptions struct {
	// ID overrides the generated run identifier.
	ID string
	// Logger receives state transition and invocation entries.
	Logger logging.Logger
	// StateLimits caps the calls allowed while the run is in a given state.
	StateLimits map[State]int
}

// NewRun creates a run for the named pattern that may perform at most
// maxCalls agent invocations (0 = unlimited).
func NewRun(pattern string, maxCalls int, optFns ...func(o *RunOptions)) *Run {
	opts := RunOptions{ID: uuid.NewString()}
	for _, fn := range optFns {
		fn(&opts)
	}

	budget := NewCallBudget(maxCalls)
	for state, n := range opts.StateLimits {
		budget.Limit(state, n)
	}

	return &Run{
		loggerAdapter: newLoggerAdapter(opts.Logger, opts.ID, pattern),
		id:            opts.ID,
		pattern:       pattern,
		budget:        budget,
		state:         StateStart,
		history:       []State{StateStart},
	}
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Pattern returns the orchestration pattern name.
func (r *Run) Pattern() string { return r.pattern }

// State returns the current state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// History returns every state visited, in order.
func (r *Run) History() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.history))
	copy(out, r.history)
	return out
}

// Invocations returns a copy of the recorded invocations.
func (r *Run) Invocations() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Invocation, len(r.invocations))
	copy(out, r.invocations)
	return out
}

// Calls returns the number of agent calls made so far.
func (r *Run) Calls() int { return r.budget.Count() }

// CallsIn returns the number of agent calls made while in state.
func (r *Run) CallsIn(state State) int { return r.budget.CountIn(state) }

// Err returns the failure that moved the run into StateFailed, if any.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Transition moves the run to the next state.
func (r *Run) Transition(to State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transitionLocked(to)
}

func (r *Run) transitionLocked(to State) error {
	if !canTransition(r.state, to) {
		return fmt.Errorf("run %s: illegal transition %s -> %s", r.id, r.state, to)
	}

	r.LogDebug("run.transition", "from", r.state.String(), "to", to.String())

	r.state = to
	r.history = append(r.history, to)

	return nil
}

// Invoke calls agent with input, counting it against the plan. Failures are
// reported as *ProviderError; the caller decides whether to Fail the run.
func (r *Run) Invoke(ctx context.Context, agent Agent, input string) (string, error) {
	r.mu.Lock()
	state := r.state
	r.mu.Unlock()

	if err := r.budget.Charge(state); err != nil {
		return "", err
	}

	r.mu.Lock()
	r.invocations = append(r.invocations, Invocation{Agent: agent.Name(), Input: input})
	r.mu.Unlock()

	r.LogDebug("run.invoke", "agent", agent.Name())

	text, err := agent.Run(ctx, input)
	if err != nil {
		return "", NewProviderError(agent.Name(), err)
	}

	if strings.TrimSpace(text) == "" {
		return "", NewProviderError(agent.Name(), ErrEmptyCompletion)
	}

	return text, nil
}

// Fail moves the run into StateFailed and records err. It returns err so it
// can be used in return statements. Failing a terminal run is a no-op.
func (r *Run) Fail(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Terminal() {
		return err
	}

	r.err = err
	r.LogWarn("run.failed", "state", r.state.String(), "error", errString(err))
	_ = r.transitionLocked(StateFailed)

	return err
}

// Complete moves the run into StateDone.
func (r *Run) Complete() error {
	return r.Transition(StateDone)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
