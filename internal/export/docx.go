package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const (
	docxTitleHalfPoints = 28
	docxBodyHalfPoints  = 22
)

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// writeDOCX собирает минимальный WordprocessingML-пакет:
// жирный заголовок 14pt, пустой абзац, текст 11pt по абзацу на строку.
func writeDOCX(w io.Writer, doc Document) error {
	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	if err := docxParagraph(&body, doc.Heading(), docxTitleHalfPoints, true); err != nil {
		return err
	}
	body.WriteString(`<w:p/>`)
	for _, line := range strings.Split(strings.ReplaceAll(doc.Body, "\r\n", "\n"), "\n") {
		if err := docxParagraph(&body, line, docxBodyHalfPoints, false); err != nil {
			return err
		}
	}
	body.WriteString(`</w:body></w:document>`)

	zw := zip.NewWriter(w)
	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxRels)},
		{"word/document.xml", body.Bytes()},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("ошибка создания части %s: %w", p.name, err)
		}
		if _, err := f.Write(p.content); err != nil {
			return fmt.Errorf("ошибка записи части %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

func docxParagraph(buf *bytes.Buffer, text string, halfPoints int, bold bool) error {
	buf.WriteString(`<w:p><w:r><w:rPr>`)
	if bold {
		buf.WriteString(`<w:b/>`)
	}
	fmt.Fprintf(buf, `<w:sz w:val="%d"/></w:rPr><w:t xml:space="preserve">`, halfPoints)
	if err := xml.EscapeText(buf, []byte(text)); err != nil {
		return err
	}
	buf.WriteString(`</w:t></w:r></w:p>`)
	return nil
}
