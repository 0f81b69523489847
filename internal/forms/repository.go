package forms

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-formbridge/forms"
)

var ErrFormNotFound = errors.New("forms: form not found")

// NotFoundError is returned when a form lookup misses.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrFormNotFound
}

// Repository persists form definitions.
type Repository interface {
	Create(ctx context.Context, form *forms.Form) (*forms.Form, error)
	GetByID(ctx context.Context, id uuid.UUID) (*forms.Form, error)
	List(ctx context.Context) ([]*forms.Form, error)
	Update(ctx context.Context, form *forms.Form) (*forms.Form, error)
}
