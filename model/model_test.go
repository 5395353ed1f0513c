package model

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentrelay/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_ReturnsText(t *testing.T) {
	m := NewMockModel("mock")
	m.AddAgentResponse("Return ONLY the capital city.", "Pakistan", "Islamabad")

	got, err := Complete(context.Background(), m, "Return ONLY the capital city.", "Pakistan")
	require.NoError(t, err)
	assert.Equal(t, "Islamabad", got)

	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, MockCall{Instructions: "Return ONLY the capital city.", Input: "Pakistan"}, calls[0])
}

func TestComplete_FallsBackToInputKeyAndDefault(t *testing.T) {
	m := NewMockModel("mock")
	m.AddResponse("hello", "hi there")

	got, err := Complete(context.Background(), m, "any", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)

	got, err = Complete(context.Background(), m, "any", "unknown")
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: unknown", got)
}

func TestComplete_EmptyCompletionIsFailure(t *testing.T) {
	m := NewMockModel("mock")
	m.AddResponse("blank", "   ")

	_, err := Complete(context.Background(), m, "i", "blank")
	assert.ErrorIs(t, err, core.ErrEmptyCompletion)
}

func TestComplete_PropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockModel("mock")
	m.AddFailure("broken", boom)

	_, err := Complete(context.Background(), m, "broken", "x")
	assert.ErrorIs(t, err, boom)
}

func TestComplete_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Complete(ctx, NewMockModel("mock"), "i", "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnavailable(t *testing.T) {
	u := Unavailable{Err: core.ErrMissingAPIKey, Meta: Info{Name: "gemini-2.0-flash", Provider: "openai"}}

	_, err := Complete(context.Background(), u, "i", "x")
	assert.ErrorIs(t, err, core.ErrMissingAPIKey)
	assert.Equal(t, "openai", u.Info().Provider)
}
