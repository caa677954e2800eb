package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"penora-write/internal/domain"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAI генерирует текст напрямую через OpenAI-совместимый API (OpenAI, OpenRouter и т.п.)
type OpenAI struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

var _ Generator = (*OpenAI)(nil)

// NewOpenAI создает генератор поверх go-openai
func NewOpenAI(apiKey, baseURL, model string, httpClient *http.Client, logger *zap.Logger) *OpenAI {
	cfg := openaigo.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	if model == "" {
		model = openaigo.GPT4oMini
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAI{
		client: openaigo.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.Named("OpenAIGenerator"),
	}
}

// Generate выполняет один chat completion без повторов
func (g *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	started := time.Now()
	if err := req.Validate(); err != nil {
		return "", err
	}

	resp, err := g.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: g.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openaigo.ChatMessageRoleUser, Content: buildUserPrompt(req)},
		},
		Temperature: 0.9,
		MaxTokens:   maxTokensFor(req.Length),
	})
	if err != nil {
		observe(BackendOpenAI, "error", started)
		g.logger.Warn("AI API request failed", zap.String("model", g.model), zap.Error(err))
		return "", &domain.GenerationError{Message: "AI API request failed", Err: err}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		observe(BackendOpenAI, "error_empty_response", started)
		return "", &domain.GenerationError{Err: fmt.Errorf("%w: empty completion", domain.ErrMalformedResponse)}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	observe(BackendOpenAI, "success", started)
	generatedWords.WithLabelValues(BackendOpenAI, string(req.Length)).Observe(float64(len(strings.Fields(text))))
	g.logger.Debug("AI API responded",
		zap.String("model", g.model),
		zap.Duration("duration", time.Since(started)),
		zap.Int("promptTokens", resp.Usage.PromptTokens),
		zap.Int("completionTokens", resp.Usage.CompletionTokens),
	)
	return text, nil
}
