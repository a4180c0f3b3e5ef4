package llmservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"

	"riskbot/internal/config"
)

type recordingModel struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
	reply    *llms.ContentResponse
}

func (m *recordingModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, o := range options {
		o(&m.opts)
	}
	return m.reply, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestGenerateContent(t *testing.T) {
	model := &recordingModel{reply: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "[]"}}}}

	out, err := GenerateContent(context.Background(), model, "system text", "user text", 0.2)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, llms.TextContent{Text: "user text"}, model.messages[1].Parts[0])
	assert.InDelta(t, 0.2, model.opts.Temperature, 1e-9)
}

func TestGenerateContent_NoChoices(t *testing.T) {
	model := &recordingModel{reply: &llms.ContentResponse{}}

	_, err := GenerateContent(context.Background(), model, "s", "u", 0)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateContent_FakeModel(t *testing.T) {
	out, err := GenerateContent(context.Background(), fake.NewFakeLLM([]string{"hello"}), "s", "u", 0.2)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestNewModel(t *testing.T) {
	_, err := NewModel(&config.LLMConfig{Provider: "bedrock"})
	assert.Error(t, err)

	m, err := NewModel(&config.LLMConfig{Provider: config.ProviderOpenAI, BaseURL: "https://api.groq.com/openai/v1", Key: "gsk_test", Model: "llama-3.3-70b-versatile"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
