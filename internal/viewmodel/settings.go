package viewmodel

import (
	"fmt"
	"strings"

	"penora-write/internal/domain"
)

// Theme - тема оформления. Не сохраняется между запусками.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", domain.NewValidationError("theme", fmt.Sprintf("unknown theme %q", s))
	}
}

// Settings - состояние панели настроек
type Settings struct {
	theme Theme
}

func NewSettings() *Settings { return &Settings{theme: ThemeLight} }

func (s *Settings) Theme() Theme { return s.theme }

func (s *Settings) SetTheme(t Theme) { s.theme = t }

// ToggleTheme переключает light/dark и возвращает новую тему
func (s *Settings) ToggleTheme() Theme {
	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}
	return s.theme
}

// ResetLayout возвращает тему по умолчанию
func (s *Settings) ResetLayout() { s.theme = ThemeLight }
