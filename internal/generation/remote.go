package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"penora-write/internal/domain"

	"go.uber.org/zap"
)

// generateResponse - ответ POST /generate
type generateResponse struct {
	Story  *string         `json:"story"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

// Remote обращается к Generation Service по HTTP
type Remote struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Generator = (*Remote)(nil)

// NewRemote создает HTTP-клиент Generation Service
func NewRemote(baseURL string, httpClient *http.Client, logger *zap.Logger) *Remote {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.Named("RemoteGenerator"),
	}
}

// Generate отправляет идею и параметры и возвращает текст истории
func (g *Remote) Generate(ctx context.Context, req Request) (string, error) {
	started := time.Now()
	if err := req.Validate(); err != nil {
		return "", err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("ошибка при сериализации запроса: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/generate", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("ошибка при создании запроса: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	g.logger.Debug("Sending generation request",
		zap.String("storyType", string(req.StoryType)),
		zap.String("tone", string(req.Tone)),
		zap.String("length", string(req.Length)),
		zap.Int("ideaBytes", len(req.Idea)),
	)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		observe(BackendRemote, "error", started)
		g.logger.Warn("Generation request failed", zap.Error(err))
		return "", &domain.GenerationError{Message: "transport failure", Err: &domain.NetworkError{Op: "generate", Err: err}}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observe(BackendRemote, "error", started)
		return "", &domain.GenerationError{StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observe(BackendRemote, "error", started)
		g.logger.Warn("Generation service returned error", zap.Int("status", resp.StatusCode))
		return "", &domain.GenerationError{StatusCode: resp.StatusCode, Message: detailText(body)}
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		observe(BackendRemote, "error_malformed", started)
		return "", &domain.GenerationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)}
	}
	if out.Story == nil || strings.TrimSpace(*out.Story) == "" {
		observe(BackendRemote, "error_empty_response", started)
		return "", &domain.GenerationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: missing story", domain.ErrMalformedResponse)}
	}

	observe(BackendRemote, "success", started)
	generatedWords.WithLabelValues(BackendRemote, string(req.Length)).Observe(float64(len(strings.Fields(*out.Story))))
	g.logger.Debug("Generation completed", zap.Duration("duration", time.Since(started)), zap.Int("chars", len(*out.Story)))
	return *out.Story, nil
}

// detailText достает строковый detail из тела ошибки
func detailText(body []byte) string {
	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil || len(out.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(out.Detail, &s); err == nil {
		return s
	}
	return string(out.Detail)
}
