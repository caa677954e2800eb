package export

import (
	"fmt"
	"io"
	"strings"

	"penora-write/internal/domain"
)

// Format - формат выгрузки
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// Formats - все поддерживаемые форматы
var Formats = []Format{FormatText, FormatPDF, FormatDOCX, FormatHTML}

// DefaultHeading - заголовок документа, если у истории нет названия
const DefaultHeading = "Penora Write - Your Story"

// Document - то, что выгружается: название и текст
type Document struct {
	Title string
	Body  string
}

// FromStory строит документ из сохраненной истории
func FromStory(s domain.Story) Document {
	return Document{Title: s.Title, Body: s.Body}
}

// FromDraft строит документ из сгенерированного черновика
func FromDraft(d domain.Draft) Document {
	return Document{Title: d.Title, Body: d.GeneratedText}
}

// Heading возвращает заголовок для PDF/DOCX/HTML
func (d Document) Heading() string {
	if t := strings.TrimSpace(d.Title); t != "" {
		return t
	}
	return DefaultHeading
}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatText, FormatPDF, FormatDOCX, FormatHTML:
		return f, nil
	case "text":
		return FormatText, nil
	case "word":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownFormat, s)
	}
}

// Render пишет документ в w в заданном формате
func Render(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatText:
		return writeText(w, doc)
	case FormatPDF:
		return writePDF(w, doc)
	case FormatDOCX:
		return writeDOCX(w, doc)
	case FormatHTML:
		return writeHTML(w, doc)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownFormat, format)
	}
}

// FileName - имя файла выгрузки: "<название или story>.<ext>"
func FileName(title string, format Format) string {
	base := strings.TrimSpace(title)
	if base == "" {
		base = "story"
	}
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, base)
	return base + "." + string(format)
}
