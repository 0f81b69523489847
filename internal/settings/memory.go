package settings

import (
	"context"
	"sync"
)

// MemoryRepository keeps the record in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	record Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{record: Record{}}
}

func (r *MemoryRepository) Load(context.Context) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.record.Clone(), nil
}

func (r *MemoryRepository) Save(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record = record.Clone()
	return nil
}
