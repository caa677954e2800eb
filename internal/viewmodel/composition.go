package viewmodel

import (
	"strings"

	"penora-write/internal/domain"
	"penora-write/internal/generation"
)

// Composition - состояние экрана композиции поверх domain.Draft.
// Не потокобезопасна, доступ сериализует workspace.
type Composition struct {
	draft domain.Draft
}

func NewComposition() *Composition {
	return &Composition{draft: domain.NewDraft()}
}

// Draft возвращает копию текущего черновика
func (c *Composition) Draft() domain.Draft { return c.draft }

// Reset возвращает черновик к значениям по умолчанию
func (c *Composition) Reset() { c.draft = domain.NewDraft() }

func (c *Composition) SetTitle(title string) { c.draft.Title = title }

func (c *Composition) SetIdea(idea string) { c.draft.Idea = idea }

func (c *Composition) SetStoryType(t domain.StoryType) error {
	if !t.Valid() {
		return domain.NewValidationError("storyType", "unknown story type "+string(t))
	}
	c.draft.StoryType = t
	return nil
}

func (c *Composition) SetTone(t domain.Tone) error {
	if !t.Valid() {
		return domain.NewValidationError("tone", "unknown tone "+string(t))
	}
	c.draft.Tone = t
	return nil
}

func (c *Composition) SetLength(l domain.Length) error {
	if !l.Valid() {
		return domain.NewValidationError("length", "unknown length "+string(l))
	}
	c.draft.Length = l
	return nil
}

// CanGenerate - кнопка генерации активна только с непустой идеей и без запроса в полете
func (c *Composition) CanGenerate() bool {
	return strings.TrimSpace(c.draft.Idea) != "" && !c.draft.Busy
}

// BeginGeneration переводит черновик в busy, очищает прежний текст и возвращает
// запрос к генератору. Повторная генерация отправляет те же поля.
func (c *Composition) BeginGeneration() (generation.Request, error) {
	if strings.TrimSpace(c.draft.Idea) == "" {
		return generation.Request{}, domain.NewValidationError("idea", "must not be empty")
	}
	c.draft.Busy = true
	c.draft.GeneratedText = ""
	return generation.Request{
		Idea:      c.draft.Idea,
		StoryType: c.draft.StoryType,
		Tone:      c.draft.Tone,
		Length:    c.draft.Length,
	}, nil
}

// FinishGeneration снимает busy и записывает текст; при ошибке подставляет fallback-строку.
func (c *Composition) FinishGeneration(text string, err error) {
	c.draft.Busy = false
	if err != nil || strings.TrimSpace(text) == "" {
		c.draft.GeneratedText = domain.GenerationFallbackText
		return
	}
	c.draft.GeneratedText = text
}

// SetGeneratedText позволяет править сгенерированный текст вручную перед сохранением
func (c *Composition) SetGeneratedText(text string) { c.draft.GeneratedText = text }

// HasSavableText - сохранять есть что, если текст есть и он не fallback
func (c *Composition) HasSavableText() bool {
	t := strings.TrimSpace(c.draft.GeneratedText)
	return t != "" && t != domain.GenerationFallbackText
}
