package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// MockModelImpl for testing agent behavior
type MockModelImpl struct{ mock.Mock }

func (m *MockModelImpl) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	args := m.Called(ctx, req)
	if r, ok := args.Get(0).(*model.Response); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModelImpl) Info() model.Info {
	return model.Info{Name: "mock-model", Provider: "mock"}
}

func textResponse(text string) *model.Response {
	return &model.Response{Content: core.NewTextContent("assistant", text), FinishReason: "stop"}
}

func requestFor(instructions, input string) model.Request {
	return model.Request{
		Instructions: instructions,
		Contents:     []core.Content{core.NewTextContent("user", input)},
	}
}

func TestNew(t *testing.T) {
	llm := &MockModelImpl{}
	a := New("Capital Finder", "Return ONLY the capital city.", llm)

	assert.Equal(t, "Capital Finder", a.Name())
	assert.Equal(t, "Agent Capital Finder", a.Description())
	assert.Equal(t, "Return ONLY the capital city.", a.Instructions())
	assert.Equal(t, llm, a.Model())

	var _ core.Agent = a
}

func TestNew_Options(t *testing.T) {
	a := New("x", "y", &MockModelImpl{}, func(o *Options) {
		o.Description = "finds capitals"
		o.Logger = nil
		o.Timeout = time.Second
	})

	assert.Equal(t, "finds capitals", a.Description())
	assert.NotNil(t, a.logger)
	assert.Equal(t, time.Second, a.timeout)
}

func TestAgent_Run_Success(t *testing.T) {
	llm := &MockModelImpl{}
	llm.On("Generate", mock.Anything, requestFor("Return ONLY the capital city.", "Pakistan")).
		Return(textResponse("Islamabad"), nil)

	a := New("Capital Finder", "Return ONLY the capital city.", llm)

	text, err := a.Run(context.Background(), "Pakistan")
	require.NoError(t, err)
	assert.Equal(t, "Islamabad", text)
	llm.AssertExpectations(t)
}

func TestAgent_Run_FailureIsProviderError(t *testing.T) {
	boom := errors.New("503 service unavailable")
	llm := &MockModelImpl{}
	llm.On("Generate", mock.Anything, mock.Anything).Return(nil, boom)

	a := New("Language Finder", "Return ONLY the main language.", llm)

	text, err := a.Run(context.Background(), "Pakistan")
	assert.Empty(t, text)

	var pe *core.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Language Finder", pe.Agent)
	assert.ErrorIs(t, err, boom)
}

func TestAgent_Run_EmptyCompletionIsFailure(t *testing.T) {
	llm := &MockModelImpl{}
	llm.On("Generate", mock.Anything, mock.Anything).Return(textResponse(""), nil)

	text, err := New("a", "b", llm).Run(context.Background(), "c")
	assert.Empty(t, text)
	assert.ErrorIs(t, err, core.ErrEmptyCompletion)
}

func TestAgent_Run_Timeout(t *testing.T) {
	llm := &MockModelImpl{}
	llm.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	a := New("slow", "b", llm, func(o *Options) { o.Timeout = 10 * time.Millisecond })

	_, err := a.Run(context.Background(), "c")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, core.IsProviderFailure(err))
}

func TestAgent_SameInstructionsProduceSameRequests(t *testing.T) {
	m := model.NewMockModel("mock")

	first := New("Mood Detector", "Respond with ONE word.", m)
	second := New("Mood Detector", "Respond with ONE word.", m)

	_, err := first.Run(context.Background(), "I feel great")
	require.NoError(t, err)
	_, err = second.Run(context.Background(), "I feel great")
	require.NoError(t, err)

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1])
}

func TestAgent_Run_RecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	before := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(before)

	m := model.NewMockModel("mock")
	m.AddFailure("broken", errors.New("boom"))

	_, err := New("Uplift Buddy", "broken", m).Run(context.Background(), "sad")
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "agent.run", spans[0].Name)
	assert.Equal(t, "Error", spans[0].Status.Code.String())
}
