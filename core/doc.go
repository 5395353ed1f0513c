// Package core provides the foundational domain types, interfaces and
// bookkeeping used by agentrelay. It defines the core abstractions for:
//
//   - Agents (a named instruction string bound to a completion backend)
//   - Content (role-based text exchanged with a model)
//   - Runs (one user turn: a bounded sequence of invocations and the state
//     machine START → RUNNING → [BRANCH] → [SYNTHESIZE] → DONE | FAILED)
//   - Errors shared by every layer (ProviderError and sentinels)
//
// The package intentionally keeps implementation concerns (model adapters,
// concrete agents, orchestration patterns) out of scope, exposing small
// interfaces so orchestrators can be exercised against substitute agents.
package core
