package http

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/goliatone/go-formbridge/internal/nonce"
)

// integrationsPage renders the integrations tab. The wpforms-integration
// query parameter expands one provider's section.
func (s *Server) integrationsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	record, err := s.settings.All(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	focus := strings.TrimSpace(r.URL.Query().Get("wpforms-integration"))
	s.renderPage(w, "integrations.html", integrationsPage{
		Sections: template.HTML(s.registry.SettingsProviders(ctx, record, focus)),
		Nonce:    s.issueNonce(ctx, nonce.ActionAdmin),
		AjaxURL:  s.url(func() (string, error) { return s.urls.Ajax("") }),
		Focus:    focus,
	})
}
