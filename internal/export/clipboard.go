package export

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// clipboardWrite подменяется в тестах
var clipboardWrite = clipboard.WriteAll

// CopyToClipboard копирует текст истории в системный буфер обмена
func CopyToClipboard(doc Document) error {
	if err := clipboardWrite(doc.Body); err != nil {
		return fmt.Errorf("could not copy to clipboard: %w", err)
	}
	return nil
}
