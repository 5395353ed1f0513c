package core

import "context"

// Agent is the unit orchestrators compose: a named policy that turns one input
// string into one completion. Implementations must return either a non-empty
// text or an error, never both and never neither.
type Agent interface {
	Name() string
	Run(ctx context.Context, input string) (string, error)
}

// Invocation records a single agent call within a Run.
type Invocation struct {
	Agent string
	Input string
}

// Result is the text produced by a successful Invocation.
type Result struct {
	Text string
}
