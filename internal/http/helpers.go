package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-formbridge/internal/permissions"
	"github.com/goliatone/go-formbridge/internal/providers"
	"github.com/goliatone/go-formbridge/internal/settings"
	"github.com/goliatone/go-formbridge/internal/validation"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
)

type errorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message,omitempty"`
	Issues  []validation.ValidationIssue `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" || trimmedBase == "/" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	return json.NewDecoder(body).Decode(target)
}

func decodeStatus(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	}
	return http.StatusBadRequest, "invalid_json"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	switch {
	case errors.Is(err, formstore.ErrFormNotFound), errors.Is(err, settings.ErrAccountMissing):
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	case errors.Is(err, permissions.ErrPermissionDenied):
		return http.StatusForbidden, errorResponse{Error: "forbidden", Message: err.Error()}
	case errors.Is(err, providers.ErrInvalidNonce):
		return http.StatusForbidden, errorResponse{Error: "invalid_nonce"}
	case errors.Is(err, validation.ErrSchemaValidation):
		return http.StatusBadRequest, errorResponse{Error: "validation_failed", Message: err.Error(), Issues: validation.Issues(err)}
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		return http.StatusBadRequest, errorResponse{Error: "validation_failed", Message: err.Error()}
	case goerrors.IsCategory(err, goerrors.CategoryNotFound):
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	case goerrors.IsCategory(err, goerrors.CategoryExternal):
		return http.StatusBadGateway, errorResponse{Error: "provider_error", Message: err.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
}
