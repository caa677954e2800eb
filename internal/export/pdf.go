package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Параметры страницы, мм и пункты
const (
	pdfMargin      = 15.0
	pdfTitleY      = 20.0
	pdfTitleSize   = 18.0
	pdfTitleGap    = 15.0
	pdfBodySize    = 12.0
	pdfLineStep    = 7.0
	pdfBottomLimit = 20.0
)

// writePDF верстает A4 с переносом строк по ширине и разрывом страниц
func writePDF(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	// Встроенные шрифты в cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, pageHeight := pdf.GetPageSize()
	maxWidth := pageWidth - 2*pdfMargin

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", pdfTitleSize)
	pdf.Text(pdfMargin, pdfTitleY, tr(doc.Heading()))

	y := pdfTitleY + pdfTitleGap
	pdf.SetFont("Helvetica", "", pdfBodySize)
	// SplitText индексирует ширины по руне, поэтому байты cp1252 передаются как руны 0-255
	for _, line := range pdf.SplitText(bytesAsRunes(tr(doc.Body)), maxWidth) {
		if y > pageHeight-pdfBottomLimit {
			pdf.AddPage()
			y = pdfTitleY
		}
		pdf.Text(pdfMargin, y, runesAsBytes(line))
		y += pdfLineStep
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("ошибка формирования PDF: %w", err)
	}
	return nil
}

func bytesAsRunes(s string) string {
	out := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = rune(s[i])
	}
	return string(out)
}

func runesAsBytes(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, byte(r))
	}
	return string(out)
}
