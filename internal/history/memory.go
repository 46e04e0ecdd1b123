package history

import (
	"context"
	"sync"

	"github.com/stegosight/stegosight/internal/domain"
)

// MemoryStore is an in-process history store, the default outside
// daemon mode. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records []domain.HistoryRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append persists a record.
func (s *MemoryStore) Append(ctx context.Context, record *domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *record)
	return nil
}

// List returns the most recent records, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]domain.HistoryRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
