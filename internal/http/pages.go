package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var pageFS embed.FS

var pageTemplates = template.Must(template.ParseFS(pageFS, "templates/*.html"))

type builderPage struct {
	FormID  string
	Title   string
	Sidebar template.HTML
	Content template.HTML
	Nonce   string
	AjaxURL string
	SaveURL string
}

type integrationsPage struct {
	Sections template.HTML
	Nonce    string
	AjaxURL  string
	Focus    string
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("http.page_render_failed", "template", name, "error", err)
		writeError(w, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.String())
}
