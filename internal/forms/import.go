package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	slug "github.com/goliatone/go-slug"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/internal/identity"
)

// Definition is the JSON document accepted by ImportDefinition. Code keeps
// the stored id stable across imports; it defaults to the slugged title.
type Definition struct {
	Code      string          `json:"code"`
	Title     string          `json:"title"`
	Fields    []forms.Field   `json:"fields"`
	Providers forms.Providers `json:"providers,omitempty"`
	Settings  map[string]any  `json:"settings,omitempty"`
}

func (d Definition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required),
		validation.Field(&d.Fields, validation.Required),
	)
}

// DecodeDefinition reads one definition from r.
func DecodeDefinition(r io.Reader) (Definition, error) {
	var def Definition
	if err := json.NewDecoder(r).Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("forms: decode definition: %w", err)
	}
	return def, nil
}

// ImportDefinition creates or replaces the form identified by the
// definition's code. Existing provider connections survive a re-import
// unless the definition carries its own.
func ImportDefinition(ctx context.Context, repo Repository, def Definition) (*forms.Form, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(def.Code)
	if code == "" {
		normalized, err := slug.Normalize(def.Title)
		if err != nil {
			return nil, fmt.Errorf("forms: derive code: %w", err)
		}
		code = normalized
	}
	id := identity.FormUUID(code)

	existing, err := repo.GetByID(ctx, id)
	switch {
	case errors.Is(err, ErrFormNotFound):
		return repo.Create(ctx, &forms.Form{
			ID:        id,
			Title:     def.Title,
			Fields:    def.Fields,
			Providers: def.Providers,
			Settings:  def.Settings,
		})
	case err != nil:
		return nil, err
	}

	existing.Title = def.Title
	existing.Fields = def.Fields
	existing.Settings = def.Settings
	if len(def.Providers) > 0 {
		existing.Providers = def.Providers
	}
	return repo.Update(ctx, existing)
}
