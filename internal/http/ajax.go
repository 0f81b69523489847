package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/goliatone/go-formbridge/internal/providers"
)

// ajax serves admin-ajax. Nonce failures answer "-1" with 403 and unknown
// actions "0" with 400. A request no provider answered gets an empty 200.
func (s *Server) ajax(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "0")
		return
	}
	action := trimmed(r.Form, "action")
	req := ajaxRequest(r.Form, s.userID(r.Context()))

	env, err := s.registry.Dispatch(r.Context(), action, req)
	switch {
	case errors.Is(err, providers.ErrInvalidNonce):
		s.logger.Warn("http.ajax_nonce_rejected", "action", action)
		writeText(w, http.StatusForbidden, "-1")
		return
	case errors.Is(err, providers.ErrUnknownAction):
		writeText(w, http.StatusBadRequest, "0")
		return
	case err != nil:
		s.logger.Error("http.ajax_failed", "action", action, "error", err)
		writeError(w, err)
		return
	}
	if env == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func ajaxRequest(form url.Values, user string) providers.Request {
	return providers.Request{
		Task:         trimmed(form, "task"),
		Provider:     trimmed(form, "provider"),
		ID:           trimmed(form, "id"),
		FormID:       trimmed(form, "form_id"),
		Name:         trimmed(form, "name"),
		ConnectionID: trimmed(form, "connection_id"),
		AccountID:    trimmed(form, "account_id"),
		ListID:       trimmed(form, "list_id"),
		Key:          trimmed(form, "key"),
		Nonce:        trimmed(form, "nonce"),
		Data:         serializedData(form.Get("data")),
		User:         user,
	}
}

// serializedData decodes the url-encoded "data" field posted by the account
// forms. Only the first value of each key is kept and blank keys are dropped.
func serializedData(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(values))
	for key := range values {
		if key == "" {
			continue
		}
		out[key] = trimmed(values, key)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
