package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
)

var pageTemplate = template.Must(template.New("story").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{.Body}}
</body>
</html>
`))

// writeHTML рендерит текст как markdown под заголовком <h1>
func writeHTML(w io.Writer, doc Document) error {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(doc.Body), &buf); err != nil {
		return fmt.Errorf("ошибка рендеринга markdown: %w", err)
	}
	return pageTemplate.Execute(w, struct {
		Title string
		Body  template.HTML
	}{
		Title: doc.Heading(),
		Body:  template.HTML(buf.String()),
	})
}
