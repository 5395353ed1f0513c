// Package gemini provides a model.Model backed by the native Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
	"google.golang.org/api/option"
)

// Options configure the Gemini model adapter.
type Options struct {
	Model           string
	APIKey          string
	Endpoint        string
	Temperature     float32
	MaxOutputTokens int32
}

// Model wraps a genai client behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a Gemini model. No network call is made until Generate.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:           "gemini-2.0-flash",
		Temperature:     0.7,
		MaxOutputTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.ClientOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Model{client: client, opts: opts}, nil
}

// Generate implements model.Model. The agent's instructions are sent as the
// system instruction and the contents as the user turn.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	gm := m.client.GenerativeModel(m.opts.Model)
	gm.SetTemperature(m.opts.Temperature)
	gm.SetMaxOutputTokens(m.opts.MaxOutputTokens)

	if req.Instructions != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Instructions)}}
	}

	parts := make([]genai.Part, 0, len(req.Contents))
	for _, c := range req.Contents {
		if text := c.Text(); text != "" && c.Role != "system" {
			parts = append(parts, genai.Text(text))
		}
	}

	resp, err := gm.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	out := &model.Response{
		Content:      core.NewTextContent("assistant", extractText(resp)),
		FinishReason: "stop",
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != 0 {
		out.FinishReason = strings.ToLower(resp.Candidates[0].FinishReason.String())
	}

	if resp.UsageMetadata != nil {
		out.Usage = &model.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return out, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	return b.String()
}

// Close releases the underlying client.
func (m *Model) Close() error {
	return m.client.Close()
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}
