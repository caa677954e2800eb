package generation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"penora-write/internal/domain"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// Ollama генерирует текст через нативный API Ollama
type Ollama struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

var _ Generator = (*Ollama)(nil)

// NewOllama создает генератор для локального Ollama
func NewOllama(baseURL, model string, httpClient *http.Client, logger *zap.Logger) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	// api.NewClient требует URL без суффикса /v1
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга Ollama Base URL '%s': %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if model == "" {
		model = "llama3.1"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ollama{
		client: api.NewClient(parsed, httpClient),
		model:  model,
		logger: logger.Named("OllamaGenerator"),
	}, nil
}

// Generate выполняет один нестриминговый chat-запрос
func (g *Ollama) Generate(ctx context.Context, req Request) (string, error) {
	started := time.Now()
	if err := req.Validate(); err != nil {
		return "", err
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model: g.model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(req)},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": 0.9,
			"num_predict": maxTokensFor(req.Length),
		},
	}

	var resp api.ChatResponse
	err := g.client.Chat(ctx, chatReq, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		observe(BackendOllama, "error", started)
		g.logger.Warn("Ollama request failed", zap.String("model", g.model), zap.Error(err))
		return "", &domain.GenerationError{Message: "Ollama request failed", Err: err}
	}

	text := strings.TrimSpace(resp.Message.Content)
	if text == "" {
		observe(BackendOllama, "error_empty_response", started)
		return "", &domain.GenerationError{Err: fmt.Errorf("%w: empty completion", domain.ErrMalformedResponse)}
	}

	observe(BackendOllama, "success", started)
	generatedWords.WithLabelValues(BackendOllama, string(req.Length)).Observe(float64(len(strings.Fields(text))))
	g.logger.Debug("Ollama responded",
		zap.String("model", g.model),
		zap.Duration("duration", time.Since(started)),
		zap.Int("promptTokens", resp.PromptEvalCount),
		zap.Int("completionTokens", resp.EvalCount),
	)
	return text, nil
}
