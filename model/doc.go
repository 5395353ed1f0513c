// Package model defines the provider‑agnostic completion boundary used by
// agentrelay agents.
//
// Core goals:
//   - A single blocking Generate call behind the Model interface
//   - Complete, the "instructions + input -> text" operation agents rely on
//   - Config, the explicitly constructed provider configuration shared by agents
//   - Lightweight doubles for tests and offline demos (MockModel, Unavailable)
//
// Providers (OpenAI-compatible, Anthropic, Gemini) implement Model in
// sub-packages so agents and flows stay decoupled from vendor SDKs.
package model
