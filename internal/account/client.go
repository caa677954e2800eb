package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"penora-write/internal/domain"
	"penora-write/shared/logger"

	"go.uber.org/zap"
)

// Сообщения по умолчанию, если сервер не прислал detail
const (
	defaultAuthMessage      = "Error occurred!"
	defaultFederatedMessage = "Google login failed"
)

// Gateway - тонкий клиент Account Service. Одна попытка на вызов, без повторов.
type Gateway interface {
	Authenticate(ctx context.Context, username, password string, mode Mode) (AuthResult, error)
	AuthenticateFederated(ctx context.Context, providerToken string) (AuthResult, error)
	ListMine(ctx context.Context, credential string) ([]domain.Story, error)
	Save(ctx context.Context, credential string, input SaveInput) error
}

// SaveInput - поля сохраняемой истории
type SaveInput struct {
	Title     string
	Body      string
	StoryType domain.StoryType
	ClientID  string
}

// ClientConfig содержит настройки клиента Account Service
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client реализует Gateway поверх HTTP JSON
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient создает новый клиент Account Service
func NewClient(cfg ClientConfig, log *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger.OrNop(log).Named("AccountGateway"),
	}
}

// Authenticate выполняет вход или регистрацию по логину и паролю
func (c *Client) Authenticate(ctx context.Context, username, password string, mode Mode) (AuthResult, error) {
	var path string
	switch mode {
	case ModeLogin:
		path = "/login"
	case ModeSignup:
		path = "/signup"
	default:
		return AuthResult{}, domain.NewValidationError("mode", fmt.Sprintf("unknown mode %q", mode))
	}
	call := string(mode)

	status, body, err := c.do(ctx, call, http.MethodPost, path, "", credentialsRequest{Username: username, Password: password})
	if err != nil {
		return AuthResult{}, err
	}
	if !isSuccess(status) {
		msg := errorMessage(body, defaultAuthMessage)
		c.logger.Warn("Authentication rejected", zap.String("mode", call), zap.Int("status", status), zap.String("detail", msg))
		c.observe(call, "auth_error")
		return AuthResult{}, &domain.AuthError{StatusCode: status, Message: msg}
	}

	if mode == ModeSignup {
		var resp signupResponse
		// Тело у signup необязательно
		_ = json.Unmarshal(body, &resp)
		c.observe(call, "success")
		msg := resp.Message
		if msg == "" {
			msg = resp.Msg
		}
		return AuthResult{Message: msg}, nil
	}

	resp, err := decodeToken(body)
	if err != nil {
		c.observe(call, "malformed")
		return AuthResult{}, &domain.AuthError{StatusCode: status, Message: "unexpected login response", Err: err}
	}

	c.observe(call, "success")
	displayName := resp.Username
	if displayName == "" {
		displayName = username
	}
	return AuthResult{Credential: *resp.AccessToken, DisplayName: displayName, Email: resp.Email}, nil
}

// AuthenticateFederated обменивает токен провайдера (Google ID token) на credential
func (c *Client) AuthenticateFederated(ctx context.Context, providerToken string) (AuthResult, error) {
	const call = "federated_login"

	status, body, err := c.do(ctx, call, http.MethodPost, "/google-login", "", federatedRequest{Credential: providerToken})
	if err != nil {
		return AuthResult{}, err
	}
	if !isSuccess(status) {
		msg := errorMessage(body, defaultFederatedMessage)
		c.logger.Warn("Federated login rejected", zap.Int("status", status), zap.String("detail", msg))
		c.observe(call, "auth_error")
		return AuthResult{}, &domain.AuthError{StatusCode: status, Message: msg}
	}

	resp, err := decodeToken(body)
	if err != nil {
		c.observe(call, "malformed")
		return AuthResult{}, &domain.AuthError{StatusCode: status, Message: defaultFederatedMessage, Err: err}
	}

	c.observe(call, "success")
	return AuthResult{Credential: *resp.AccessToken, DisplayName: resp.Username, Email: resp.Email}, nil
}

// ListMine возвращает истории владельца credential в порядке сервера
func (c *Client) ListMine(ctx context.Context, credential string) ([]domain.Story, error) {
	const call = "list_mine"

	status, body, err := c.do(ctx, call, http.MethodGet, "/stories/my", credential, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.observe(call, "auth_error")
		return nil, &domain.AuthError{StatusCode: status, Message: errorMessage(body, "unauthorized")}
	}
	if !isSuccess(status) {
		c.observe(call, "network_error")
		return nil, &domain.NetworkError{Op: call, Err: fmt.Errorf("unexpected status %d", status)}
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Stories == nil {
		c.observe(call, "malformed")
		if err == nil {
			err = errors.New("missing stories array")
		}
		return nil, &domain.NetworkError{Op: call, Err: fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)}
	}

	out := make([]domain.Story, 0, len(*resp.Stories))
	for _, raw := range *resp.Stories {
		var rec storyRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			c.logger.Warn("Skipping malformed story record", zap.Error(err))
			continue
		}
		s, err := rec.toDomain(c.logger)
		if err != nil {
			c.logger.Warn("Skipping malformed story record", zap.Error(err))
			continue
		}
		out = append(out, s)
	}

	c.observe(call, "success")
	c.logger.Debug("Fetched stories", zap.Int("count", len(out)))
	return out, nil
}

// Save сохраняет историю на сервере. Результат сообщает только успех или неудачу.
func (c *Client) Save(ctx context.Context, credential string, input SaveInput) error {
	const call = "save"

	req := saveRequest{
		Title:     input.Title,
		Story:     input.Body,
		StoryType: string(input.StoryType),
		ClientID:  input.ClientID,
	}
	status, body, err := c.do(ctx, call, http.MethodPost, "/stories/save", credential, req)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.observe(call, "auth_error")
		return &domain.AuthError{StatusCode: status, Message: errorMessage(body, "unauthorized")}
	}
	if !isSuccess(status) {
		c.observe(call, "network_error")
		return &domain.NetworkError{Op: call, Err: fmt.Errorf("unexpected status %d: %s", status, errorMessage(body, ""))}
	}
	c.observe(call, "success")
	return nil
}

// do выполняет запрос и возвращает код и тело ответа.
// Транспортные ошибки оборачиваются в NetworkError.
func (c *Client) do(ctx context.Context, call, method, path, credential string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("ошибка при сериализации запроса: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("ошибка при создании запроса: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	accountRequestDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("Account Service request failed", zap.String("call", call), zap.Error(err))
		c.observe(call, "network_error")
		return 0, nil, &domain.NetworkError{Op: call, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(call, "network_error")
		return 0, nil, &domain.NetworkError{Op: call, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("Account Service responded",
		zap.String("call", call),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

func (c *Client) observe(call, status string) {
	accountRequestsTotal.WithLabelValues(call, status).Inc()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// decodeToken разбирает ответ с access_token и проверяет его форму
func decodeToken(body []byte) (tokenResponse, error) {
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if resp.AccessToken == nil || *resp.AccessToken == "" {
		return resp, fmt.Errorf("%w: missing access_token", domain.ErrMalformedResponse)
	}
	return resp, nil
}

// errorMessage достает detail из тела ошибки или возвращает fallback
func errorMessage(body []byte, fallback string) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		if msg := er.message(); msg != "" {
			return msg
		}
	}
	return fallback
}
