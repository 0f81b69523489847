package entriescmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-formbridge/forms"
)

const (
	processEntryMessageType  = "formbridge.entries.process"
	saveProvidersMessageType = "formbridge.forms.providers.save"
)

var formIDRule = validation.By(func(value any) error {
	id, _ := value.(string)
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return validation.NewError("formbridge.form_id_invalid", "form_id must be a valid uuid")
	}
	return nil
})

// ProcessEntryCommand sends a completed submission to every provider
// connection of its form.
type ProcessEntryCommand struct {
	FormID  string                   `json:"form_id"`
	EntryID string                   `json:"entry_id,omitempty"`
	Fields  map[int]forms.EntryField `json:"fields"`
	Entry   map[string]any           `json:"entry,omitempty"`
}

func (ProcessEntryCommand) Type() string { return processEntryMessageType }

func (m ProcessEntryCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.FormID, validation.Required, formIDRule),
		validation.Field(&m.Fields, validation.Required),
	)
}

// SaveProvidersCommand replaces the provider connections stored on a form,
// as posted by the builder.
type SaveProvidersCommand struct {
	FormID    string          `json:"form_id"`
	Providers forms.Providers `json:"providers"`
}

func (SaveProvidersCommand) Type() string { return saveProvidersMessageType }

func (m SaveProvidersCommand) Validate() error {
	errs := validation.Errors{}
	if err := validation.Validate(m.FormID, validation.Required, formIDRule); err != nil {
		errs["form_id"] = err
	}
	for slug, conns := range m.Providers {
		for id := range conns {
			if !strings.HasPrefix(id, "connection_") {
				errs["providers"] = validation.NewError("formbridge.connection_id_invalid", "invalid connection id "+id+" for "+slug)
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
