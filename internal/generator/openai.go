package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are an instructional designer who writes interactive exercises for learners. " +
	"Always answer with a single JSON object and nothing else."

// OpenAIProvider completes prompts with an OpenAI compatible chat API.
type OpenAIProvider struct {
	api         *openai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

// NewOpenAIProvider creates a provider. baseURL may be empty to use the
// default OpenAI endpoint.
func NewOpenAIProvider(baseURL, apiKey, model string, logger *slog.Logger) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIProvider{
		api:         openai.NewClientWithConfig(config),
		model:       model,
		temperature: 0.7,
		logger:      logger,
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (json.RawMessage, error) {
	resp, err := p.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("completion API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("completion returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	p.logger.Debug("completion response", "model", p.model, "bytes", len(raw))

	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("completion is not valid JSON (raw: %.200s)", raw)
	}
	return json.RawMessage(raw), nil
}
