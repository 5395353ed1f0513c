package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/agentrelay/core"
)

// Request captures the normalized model input produced by agents.
type Request struct {
	Instructions string         `json:"instructions"` // System prompt / role of the agent
	Contents     []core.Content `json:"contents"`     // Converted to provider messages
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the final completion returned by a model.
type Response struct {
	ID           string       `json:"id"`
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "gemini", "mock"
}

// Model is the minimal interface required by agents to drive generation.
// Generate blocks until the provider answers or fails.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Complete sends one instruction/input pair to m and returns the completion
// text. An empty completion is reported as core.ErrEmptyCompletion.
func Complete(ctx context.Context, m Model, instructions, input string) (string, error) {
	resp, err := m.Generate(ctx, Request{
		Instructions: instructions,
		Contents:     []core.Content{core.NewTextContent("user", input)},
	})
	if err != nil {
		return "", err
	}

	if resp == nil {
		return "", core.ErrEmptyCompletion
	}

	text := resp.Content.Text()
	if strings.TrimSpace(text) == "" {
		return "", core.ErrEmptyCompletion
	}

	return text, nil
}

// LastUserText returns the text of the last content in req.
func LastUserText(req Request) string {
	if len(req.Contents) == 0 {
		return ""
	}
	return req.Contents[len(req.Contents)-1].Text()
}

// Config is the process-wide completion provider configuration. It is built
// once at startup and passed by reference to every agent; it is never mutated.
type Config struct {
	Provider    string        // openai | anthropic | gemini | mock
	Model       string        // Model identifier, e.g. gemini-2.0-flash
	BaseURL     string        // Optional endpoint override (OpenAI-compatible providers)
	APIKey      string        // Credential; empty surfaces as a failure on first call
	Temperature *float64      // Sampling temperature; nil keeps the adapter default
	MaxTokens   int64         // Completion token ceiling
	Timeout     time.Duration // Per-call timeout enforced by agents (0 = none)
}

// Unavailable is a Model whose every call fails with Err. It stands in for a
// provider that could not be configured (e.g. missing credential) so the
// failure surfaces on the first completion call instead of at startup.
type Unavailable struct {
	Err  error
	Meta Info
}

// Generate implements Model.
func (u Unavailable) Generate(context.Context, Request) (*Response, error) {
	return nil, u.Err
}

// Info implements Model.
func (u Unavailable) Info() Info { return u.Meta }

// MockCall records a single request received by a MockModel.
type MockCall struct {
	Instructions string
	Input        string
}

// MockModel is a lightweight in‑memory Model useful for tests & examples.
// Responses are keyed by instructions+input, then by input alone.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	failures  map[string]error
	calls     []MockCall
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
		failures:  make(map[string]error),
	}
}

func mockKey(instructions, input string) string { return instructions + "\x00" + input }

// AddResponse registers a canned completion for any agent receiving input.
func (m *MockModel) AddResponse(input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = response
}

// AddAgentResponse registers a canned completion for a specific instruction string.
func (m *MockModel) AddAgentResponse(instructions, input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[mockKey(instructions, input)] = response
}

// AddFailure makes every call whose instructions equal instructions fail with err.
func (m *MockModel) AddFailure(instructions string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[instructions] = err
}

// Calls returns a copy of all requests received so far.
func (m *MockModel) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(req.Contents) == 0 {
		return nil, fmt.Errorf("no contents provided")
	}

	input := LastUserText(req)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Instructions: req.Instructions, Input: input})

	if err, ok := m.failures[req.Instructions]; ok {
		return nil, err
	}

	full, ok := m.responses[mockKey(req.Instructions, input)]
	if !ok {
		full, ok = m.responses[input]
	}
	if !ok {
		full = fmt.Sprintf("Mock response to: %s", input)
	}

	return &Response{
		Content:      core.NewTextContent("assistant", full),
		FinishReason: "stop",
	}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
