package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/hupe1980/agentrelay/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("241 "), genai.Text("million")}},
		}},
	}
	assert.Equal(t, "241 million", extractText(resp))

	assert.Empty(t, extractText(nil))
	assert.Empty(t, extractText(&genai.GenerateContentResponse{}))
	assert.Empty(t, extractText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestNewModel_Info(t *testing.T) {
	m, err := NewModel(context.Background(), func(o *Options) {
		o.APIKey = "test-key"
		o.Model = "gemini-1.5-pro"
	})
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, model.Info{Name: "gemini-1.5-pro", Provider: "gemini"}, m.Info())
}
