// Package agent contains the Agent implementation: an immutable pairing of a
// name, an instruction string (the role / system prompt) and a reference to
// the shared completion backend.
//
// Design principles:
//   - No hidden global state: the model is passed explicitly to New
//   - Immutability: instructions are fixed at construction and never change
//   - Observability: every call is logged and traced as an "agent.run" span
//
// Agents satisfy core.Agent so orchestration patterns in the flow package
// can compose them freely and tests can substitute stubs.
package agent
