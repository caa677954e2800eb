package export

import (
	"io"
)

// writeText выгружает только текст истории, без заголовка
func writeText(w io.Writer, doc Document) error {
	_, err := io.WriteString(w, doc.Body)
	return err
}
