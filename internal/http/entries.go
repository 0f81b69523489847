package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formbridge/forms"
	entriescmd "github.com/goliatone/go-formbridge/internal/commands/entries"
)

type entryRequest struct {
	EntryID string             `json:"entry_id"`
	Fields  []forms.EntryField `json:"fields"`
	Entry   map[string]any     `json:"entry"`
}

// submitEntry accepts a completed submission and runs provider processing
// for it. Field ids in the body key the submission fields.
func (s *Server) submitEntry(w http.ResponseWriter, r *http.Request) {
	var body entryRequest
	if err := decodeJSON(w, r, &body); err != nil {
		status, code := decodeStatus(err)
		writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
		return
	}
	fields := make(map[int]forms.EntryField, len(body.Fields))
	for _, field := range body.Fields {
		fields[field.ID] = field
	}
	cmd := entriescmd.ProcessEntryCommand{
		FormID:  chi.URLParam(r, "formID"),
		EntryID: body.EntryID,
		Fields:  fields,
		Entry:   body.Entry,
	}
	if err := s.processEntry.Execute(r.Context(), cmd); err != nil {
		s.logger.Error("http.entry_failed", "form_id", cmd.FormID, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "processed"})
}
