package account

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"penora-write/internal/domain"

	"go.uber.org/zap"
)

// Mode - режим Authenticate.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// AuthResult - результат успешной аутентификации.
// Для ModeSignup Credential пуст: нужно отдельно выполнить вход.
type AuthResult struct {
	Credential  string
	DisplayName string
	Email       string
	Message     string
}

// credentialsRequest - тело /login и /signup
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// federatedRequest - тело /google-login
type federatedRequest struct {
	Credential string `json:"credential"`
}

// tokenResponse - ответ /login и /google-login
type tokenResponse struct {
	AccessToken *string `json:"access_token"`
	TokenType   string  `json:"token_type,omitempty"`
	Username    string  `json:"username,omitempty"`
	Email       string  `json:"email,omitempty"`
}

// signupResponse - ответ /signup (поля необязательны)
type signupResponse struct {
	Message string `json:"message,omitempty"`
	Msg     string `json:"msg,omitempty"`
}

// errorResponse - тело ошибки в стиле FastAPI ({"detail": "..."}).
// detail бывает строкой или списком ошибок валидации.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error,omitempty"`
}

// message извлекает читаемый текст ошибки.
func (e errorResponse) message() string {
	if len(e.Detail) > 0 {
		var s string
		if err := json.Unmarshal(e.Detail, &s); err == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(e.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return e.Error
}

// saveRequest - тело /stories/save
type saveRequest struct {
	Title     string `json:"title"`
	Story     string `json:"story"`
	StoryType string `json:"story_type"`
	ClientID  string `json:"client_id,omitempty"`
}

// listResponse - ответ /stories/my. Stories - указатель, чтобы отличить
// отсутствующее поле от пустого массива.
type listResponse struct {
	Stories *[]json.RawMessage `json:"stories"`
}

// storyRecord - история в ответе сервера
type storyRecord struct {
	ID        string          `json:"_id"`
	AltID     string          `json:"id,omitempty"`
	ClientID  string          `json:"client_id,omitempty"`
	Title     string          `json:"title"`
	Story     string          `json:"story"`
	StoryType string          `json:"story_type"`
	SavedAt   json.RawMessage `json:"saved_at"`
}

// toDomain проверяет запись и переводит ее в domain.Story.
// Непонятный saved_at не отбрасывает историю: она остается с нулевым SavedAt.
func (r storyRecord) toDomain(logger *zap.Logger) (domain.Story, error) {
	id := r.ID
	if id == "" {
		id = r.AltID
	}
	if id == "" {
		return domain.Story{}, fmt.Errorf("%w: story without _id", domain.ErrMalformedResponse)
	}

	typ := domain.StoryType(strings.ToLower(r.StoryType))
	if !typ.Valid() {
		// Неизвестный тип не роняет всю выборку: такие истории видны только под фильтром "all"
		typ = domain.StoryType(r.StoryType)
	}

	var savedAt Timestamp
	if len(r.SavedAt) > 0 {
		if err := savedAt.UnmarshalJSON(r.SavedAt); err != nil {
			logger.Warn("Unparseable saved_at, keeping story", zap.String("id", id), zap.Error(err))
			savedAt = Timestamp{}
		}
	}

	return domain.Story{
		ID:        id,
		ClientID:  r.ClientID,
		Title:     r.Title,
		Body:      r.Story,
		StoryType: typ,
		SavedAt:   savedAt.Time,
		SyncState: domain.SyncSynced,
	}, nil
}

// Timestamp принимает saved_at в виде RFC 3339, ISO-строки без зоны
// (считается UTC), RFC 1123 или числа миллисекунд с эпохи.
type Timestamp struct {
	time.Time
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		for _, layout := range isoLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed.UTC()
				return nil
			}
		}
		// Число миллисекунд, переданное строкой
		if ms, err := strconv.ParseFloat(s, 64); err == nil {
			t.Time = time.UnixMilli(int64(ms)).UTC()
			return nil
		}
		return fmt.Errorf("unsupported saved_at format %q", s)
	}

	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("unsupported saved_at value %s", string(data))
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}
