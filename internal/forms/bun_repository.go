package forms

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-formbridge/forms"
)

// NewFormRepository creates the generic bun repository for forms.
func NewFormRepository(db *bun.DB) repository.Repository[*forms.Form] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*forms.Form]{
		NewRecord:          func() *forms.Form { return &forms.Form{} },
		GetID:              func(f *forms.Form) uuid.UUID { return f.ID },
		SetID:              func(f *forms.Form, id uuid.UUID) { f.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(f *forms.Form) string { return f.ID.String() },
	})
}

// BunRepository implements Repository with optional caching.
type BunRepository struct {
	repo repository.Repository[*forms.Form]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache wraps the repository with go-repository-cache
// when both cache collaborators are supplied.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewFormRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunRepository{repo: base}
}

func (r *BunRepository) Create(ctx context.Context, form *forms.Form) (*forms.Form, error) {
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	return r.repo.Create(ctx, form)
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*forms.Form, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "form", id.String())
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*forms.Form, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("title ASC")
	}))
	return records, err
}

func (r *BunRepository) Update(ctx context.Context, form *forms.Form) (*forms.Form, error) {
	record, err := r.repo.Update(ctx, form)
	if err != nil {
		return nil, mapRepositoryError(err, "form", form.ID.String())
	}
	return record, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

// EnsureSchema creates the forms table when missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*forms.Form)(nil)).IfNotExists().Exec(ctx)
	return err
}
