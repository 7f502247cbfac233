package store

import (
	"context"
	"sync"

	"github.com/wudworks/fitquote/internal/models"
)

// MemStore is an in-memory SectionStore. It stands in for a real database
// in tests and mirrors the reference system's local-storage fallback; it is
// swap-in-place behind the same interface and leaks no storage format of
// its own into the engine's contract.
type MemStore struct {
	mu       sync.RWMutex
	packages map[uint][]models.Section
}

func NewMemStore() *MemStore {
	return &MemStore{packages: make(map[uint][]models.Section)}
}

func (s *MemStore) LoadSections(_ context.Context, packageID uint) ([]models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySections(s.packages[packageID]), nil
}

func (s *MemStore) SaveSections(_ context.Context, packageID uint, sections []models.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[packageID] = copySections(sections)
	return nil
}

// copySections deep-copies the snapshot so callers cannot mutate stored
// state through retained slices.
func copySections(in []models.Section) []models.Section {
	out := make([]models.Section, len(in))
	copy(out, in)
	for i := range out {
		items := make([]models.WorkItem, len(in[i].Items))
		copy(items, in[i].Items)
		out[i].Items = items
	}
	return out
}
