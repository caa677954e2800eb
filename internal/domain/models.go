package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTitle подставляется, если история сохраняется без заголовка.
const DefaultTitle = "Untitled"

// GenerationFallbackText показывается вместо текста при неудачной генерации.
const GenerationFallbackText = "Failed to generate story, try again."

// StoryType - формат сгенерированного текста.
type StoryType string

const (
	StoryTypeShort   StoryType = "short"
	StoryTypeNovel   StoryType = "novel"
	StoryTypeChapter StoryType = "chapter"
	StoryTypePoem    StoryType = "poem"
)

// StoryTypes перечисляет допустимые типы в порядке отображения.
var StoryTypes = []StoryType{StoryTypeShort, StoryTypeNovel, StoryTypeChapter, StoryTypePoem}

// Valid сообщает, входит ли тип в перечисление.
func (t StoryType) Valid() bool {
	switch t {
	case StoryTypeShort, StoryTypeNovel, StoryTypeChapter, StoryTypePoem:
		return true
	}
	return false
}

// ParseStoryType разбирает тип истории без учета регистра.
func ParseStoryType(s string) (StoryType, error) {
	t := StoryType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", NewValidationError("story_type", fmt.Sprintf("unknown story type %q", s))
	}
	return t, nil
}

// Tone - тональность генерации.
type Tone string

const (
	ToneNeutral  Tone = "neutral"
	ToneSerious  Tone = "serious"
	ToneHumorous Tone = "humorous"
	ToneRomantic Tone = "romantic"
)

// Valid сообщает, входит ли тональность в перечисление.
func (t Tone) Valid() bool {
	switch t {
	case ToneNeutral, ToneSerious, ToneHumorous, ToneRomantic:
		return true
	}
	return false
}

// ParseTone разбирает тональность без учета регистра.
func ParseTone(s string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", NewValidationError("tone", fmt.Sprintf("unknown tone %q", s))
	}
	return t, nil
}

// Length - желаемый объем текста.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Valid сообщает, входит ли объем в перечисление.
func (l Length) Valid() bool {
	switch l {
	case LengthShort, LengthMedium, LengthLong:
		return true
	}
	return false
}

// TargetWords возвращает ориентировочное число слов для промпта.
func (l Length) TargetWords() int {
	switch l {
	case LengthShort:
		return 300
	case LengthLong:
		return 1500
	default:
		return 800
	}
}

// ParseLength разбирает объем без учета регистра.
func ParseLength(s string) (Length, error) {
	l := Length(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", NewValidationError("length", fmt.Sprintf("unknown length %q", s))
	}
	return l, nil
}

// SyncState показывает, подтвердил ли бэкенд сохранение истории.
type SyncState string

const (
	SyncLocalOnly SyncState = "local-only"
	SyncSynced    SyncState = "synced"
)

// Story - сохраненный текст пользователя.
type Story struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"story"`
	StoryType StoryType `json:"story_type"`
	SavedAt   time.Time `json:"saved_at"`
	SyncState SyncState `json:"sync_state"`
}

// NewLocalStory создает историю на клиенте: свежий id, savedAt = now, local-only.
// Пустой заголовок заменяется на DefaultTitle.
func NewLocalStory(title, body string, storyType StoryType, now time.Time) Story {
	id := NewLocalID(now)
	return Story{
		ID:        id,
		ClientID:  id,
		Title:     NormalizeTitle(title),
		Body:      body,
		StoryType: storyType,
		SavedAt:   now,
		SyncState: SyncLocalOnly,
	}
}

// NormalizeTitle применяет правило заголовка по умолчанию.
func NormalizeTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return DefaultTitle
	}
	return title
}

// Session - состояние аутентификации клиента.
type Session struct {
	Credential  string
	DisplayName string
	Email       string
}

// Authenticated сообщает, есть ли у сессии credential.
func (s Session) Authenticated() bool {
	return s.Credential != ""
}

// Draft - несохраненное состояние экрана композиции.
type Draft struct {
	Title         string
	Idea          string
	StoryType     StoryType
	Tone          Tone
	Length        Length
	GeneratedText string
	Busy          bool
}

// NewDraft возвращает черновик со значениями по умолчанию.
func NewDraft() Draft {
	return Draft{
		StoryType: StoryTypeShort,
		Tone:      ToneNeutral,
		Length:    LengthMedium,
	}
}
