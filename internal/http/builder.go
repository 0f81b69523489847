package http

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	entriescmd "github.com/goliatone/go-formbridge/internal/commands/entries"
	"github.com/goliatone/go-formbridge/internal/nonce"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
)

func (s *Server) builderPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID := chi.URLParam(r, "formID")
	form, err := s.registry.BuilderInit(ctx, formID)
	if err != nil {
		writeError(w, err)
		return
	}
	if form == nil {
		writeText(w, http.StatusNotFound, "form not found")
		return
	}

	s.renderPage(w, "builder.html", builderPage{
		FormID:  form.ID.String(),
		Title:   form.Title,
		Sidebar: template.HTML(s.registry.PanelSidebar(ctx, form)),
		Content: template.HTML(s.registry.PanelContent(ctx, form)),
		Nonce:   s.issueNonce(ctx, nonce.ActionBuilder),
		AjaxURL: s.url(func() (string, error) { return s.urls.Ajax("") }),
		SaveURL: s.url(func() (string, error) { return s.urls.Builder(formID) }),
	})
}

// builderSave stores the provider connections posted by the builder form.
func (s *Server) builderSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "invalid form body")
		return
	}
	cmd := entriescmd.SaveProvidersCommand{
		FormID:    chi.URLParam(r, "formID"),
		Providers: formstore.ParseProviderValues(r.PostForm),
	}
	if err := s.saveProviders.Execute(r.Context(), cmd); err != nil {
		s.logger.Error("http.builder_save_failed", "form_id", cmd.FormID, "error", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
