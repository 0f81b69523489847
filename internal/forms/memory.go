package forms

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formbridge/forms"
)

// MemoryRepository keeps forms in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	forms map[uuid.UUID]*forms.Form
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{forms: map[uuid.UUID]*forms.Form{}}
}

func (r *MemoryRepository) Create(_ context.Context, form *forms.Form) (*forms.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := cloneForm(form)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	r.forms[record.ID] = record
	return cloneForm(record), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*forms.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.forms[id]
	if !ok {
		return nil, &NotFoundError{Resource: "form", Key: id.String()}
	}
	return cloneForm(record), nil
}

func (r *MemoryRepository) List(context.Context) ([]*forms.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*forms.Form, 0, len(r.forms))
	for _, record := range r.forms {
		out = append(out, cloneForm(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, form *forms.Form) (*forms.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.forms[form.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "form", Key: form.ID.String()}
	}
	record := cloneForm(form)
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = time.Now().UTC()
	r.forms[record.ID] = record
	return cloneForm(record), nil
}

// cloneForm deep copies through JSON; forms only hold JSON-friendly values.
func cloneForm(form *forms.Form) *forms.Form {
	if form == nil {
		return &forms.Form{}
	}
	raw, err := json.Marshal(form)
	if err != nil {
		copied := *form
		return &copied
	}
	var out forms.Form
	if err := json.Unmarshal(raw, &out); err != nil {
		copied := *form
		return &copied
	}
	return &out
}
