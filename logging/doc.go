// Package logging provides a minimal logging interface and adapters for agentrelay.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that agents, flows and the interaction loop use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - RelayLogger wrapping Go's structured logging with run/component context
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "text", false)
//	a := agent.New("Capital Finder", instructions, llm, agent.WithLogger(logger))
package logging
