package manifest

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Raw HTML in manifest bodies is dropped; descriptions are rendered into the
// settings page as trusted markup.
var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Linkify),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// RenderDescription converts a markdown body into HTML.
func RenderDescription(body []byte) (template.HTML, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := engine.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("manifest description: %w", err)
	}
	return template.HTML(buf.String()), nil
}
