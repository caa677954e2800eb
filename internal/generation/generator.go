package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"penora-write/internal/domain"
	"penora-write/shared/logger"

	"go.uber.org/zap"
)

// Поддерживаемые реализации генератора
const (
	BackendRemote   = "remote"
	BackendOpenAI   = "openai"
	BackendOllama   = "ollama"
	BackendTemplate = "template"
)

// Request - входные данные генерации
type Request struct {
	Idea      string           `json:"idea"`
	StoryType domain.StoryType `json:"storyType"`
	Tone      domain.Tone      `json:"tone"`
	Length    domain.Length    `json:"length"`
}

// Validate проверяет предусловия запроса
func (r Request) Validate() error {
	if strings.TrimSpace(r.Idea) == "" {
		return domain.NewValidationError("idea", "must not be empty")
	}
	if !r.StoryType.Valid() {
		return domain.NewValidationError("storyType", fmt.Sprintf("unknown story type %q", r.StoryType))
	}
	if !r.Tone.Valid() {
		return domain.NewValidationError("tone", fmt.Sprintf("unknown tone %q", r.Tone))
	}
	if !r.Length.Valid() {
		return domain.NewValidationError("length", fmt.Sprintf("unknown length %q", r.Length))
	}
	return nil
}

// Generator - шлюз генерации. Вызов атомарен: либо полный текст, либо GenerationError.
// Повторов и стриминга нет; время ограничивает только контекст вызывающего.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config описывает выбор и параметры генератора
type Config struct {
	Backend string

	// remote: адрес Generation Service (POST /generate)
	BaseURL string

	// openai / ollama
	AIBaseURL string
	AIModel   string
	AIAPIKey  string

	HTTPClient *http.Client
}

// New создает генератор в зависимости от конфигурации
func New(cfg Config, log *zap.Logger) (Generator, error) {
	log = logger.OrNop(log)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Таймаут намеренно не задается: запрос ограничивает контекст вызывающего
		httpClient = &http.Client{}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendRemote:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("generation base URL is required for the %s backend", BackendRemote)
		}
		log.Debug("Using remote generation backend", zap.String("baseURL", cfg.BaseURL))
		return NewRemote(cfg.BaseURL, httpClient, log), nil
	case BackendOpenAI:
		if cfg.AIAPIKey == "" {
			return nil, fmt.Errorf("AI API key is required for the %s backend", BackendOpenAI)
		}
		log.Debug("Using OpenAI-compatible generation backend", zap.String("baseURL", cfg.AIBaseURL), zap.String("model", cfg.AIModel))
		return NewOpenAI(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel, httpClient, log), nil
	case BackendOllama:
		log.Debug("Using Ollama generation backend", zap.String("baseURL", cfg.AIBaseURL), zap.String("model", cfg.AIModel))
		g, err := NewOllama(cfg.AIBaseURL, cfg.AIModel, httpClient, log)
		if err != nil {
			return nil, err
		}
		return g, nil
	case BackendTemplate:
		return NewTemplate(time.Now().UnixNano()), nil
	default:
		return nil, fmt.Errorf("unknown generation backend %q", cfg.Backend)
	}
}
