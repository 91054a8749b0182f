package store

import (
	"context"
	"sync"

	"github.com/waiwai24/free-ollama/internal/domain"
)

// MemoryStore keeps the latest report in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	latest *domain.ScanReport
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Publish(_ context.Context, report domain.ScanReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = &report

	return nil
}

func (s *MemoryStore) Latest(_ context.Context) (domain.ScanReport, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return domain.ScanReport{}, false, nil
	}

	return *s.latest, true, nil
}
