package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) moduleModal(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "module")
	out, found, err := s.catalog.RenderModule(r.Context(), name)
	if err != nil {
		s.logger.Error("http.module_render_failed", "module", name, "error", err)
		writeError(w, err)
		return
	}
	if !found {
		writeText(w, http.StatusNotFound, "unknown module")
		return
	}
	writeHTML(w, http.StatusOK, out)
}
