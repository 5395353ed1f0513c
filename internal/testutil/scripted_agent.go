package testutil

import (
	"context"
	"sync"
)

// ScriptedAgent is a core.Agent double returning canned answers and
// recording every input it receives. Configure it with the chainable
// methods, e.g.
//
//	capital := NewScriptedAgent("Capital Finder").Reply("Islamabad")
type ScriptedAgent struct {
	name string

	mu      sync.Mutex
	reply   string
	replies map[string]string
	err     error
	inputs  []string
	block   bool
}

// NewScriptedAgent creates a ScriptedAgent with the given name.
func NewScriptedAgent(name string) *ScriptedAgent {
	return &ScriptedAgent{name: name, replies: map[string]string{}}
}

// Reply sets the default answer (chainable).
func (a *ScriptedAgent) Reply(text string) *ScriptedAgent {
	a.reply = text
	return a
}

// ReplyTo sets the answer for one specific input (chainable).
func (a *ScriptedAgent) ReplyTo(input, text string) *ScriptedAgent {
	a.replies[input] = text
	return a
}

// Fail makes every call return err (chainable).
func (a *ScriptedAgent) Fail(err error) *ScriptedAgent {
	a.err = err
	return a
}

// BlockUntilCanceled makes every call wait for context cancellation (chainable).
func (a *ScriptedAgent) BlockUntilCanceled() *ScriptedAgent {
	a.block = true
	return a
}

// Name implements core.Agent.
func (a *ScriptedAgent) Name() string { return a.name }

// Run implements core.Agent.
func (a *ScriptedAgent) Run(ctx context.Context, input string) (string, error) {
	a.mu.Lock()
	a.inputs = append(a.inputs, input)
	a.mu.Unlock()

	if a.block {
		<-ctx.Done()
		return "", ctx.Err()
	}

	if a.err != nil {
		return "", a.err
	}

	if text, ok := a.replies[input]; ok {
		return text, nil
	}

	return a.reply, nil
}

// Inputs returns every input received, in call order.
func (a *ScriptedAgent) Inputs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.inputs))
	copy(out, a.inputs)
	return out
}

// Calls returns the number of calls received.
func (a *ScriptedAgent) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.inputs)
}
