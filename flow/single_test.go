package flow

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentrelay/internal/testutil"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingle_ReturnsOutputVerbatim(t *testing.T) {
	raw := "  🤖 Suggestion: Honey lemon tea\n📌 Reason: soothes the throat  \n"
	a := testutil.NewScriptedAgent("Smart Store Agent").Reply(raw)

	s := NewSingle("product-suggest", a)
	assert.Equal(t, Plan{Calls: 1}, s.Plan())

	out, err := s.Run(context.Background(), "sore throat")
	require.NoError(t, err)
	assert.Equal(t, raw, out)
	assert.Equal(t, []string{"sore throat"}, a.Inputs())
}

func TestSingle_Failure(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewSingle("s", testutil.NewScriptedAgent("a").Fail(boom)).Run(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	_, err = NewSingle("s", nil).Run(context.Background(), "x")
	assert.Error(t, err)
}

func TestSingle_LogsRun(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelInfo, Format: "text", Output: &buf})

	_, err := NewSingle("product-suggest", testutil.NewScriptedAgent("a").Reply("ok"), func(o *SingleOptions) {
		o.Logger = logger
	}).Run(context.Background(), "x")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "run completed")
	assert.Contains(t, out, "flow=product-suggest")
	assert.Contains(t, out, "pattern=single")
	assert.Contains(t, out, "calls=1")
}
