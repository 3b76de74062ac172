package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/svelte-expert/internal/domain"
)

// StateStore keeps chat logs in process memory. Nothing survives a restart.
type StateStore struct {
	mu   sync.RWMutex
	logs map[string][]domain.ChatEntry
}

func NewStateStore() *StateStore {
	return &StateStore{
		logs: make(map[string][]domain.ChatEntry),
	}
}

func (s *StateStore) LoadEntries(_ context.Context, key string) ([]domain.ChatEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.ChatEntry(nil), s.logs[key]...), nil
}

// SaveEntries replaces the log stored under key.
func (s *StateStore) SaveEntries(_ context.Context, key string, entries []domain.ChatEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[key] = append([]domain.ChatEntry(nil), entries...)
	return nil
}
