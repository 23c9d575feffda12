package presence

import (
	"context"
	"sort"
	"sync"
	"time"

	"jobportal_backend/internal/models"
)

// MemoryStore - Store для одного инстанса (без Redis)
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Connect(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[userID]; ok {
		e.Connections++
		return false, nil
	}
	s.entries[userID] = &Entry{UserID: userID, Status: models.PresenceOnline, Since: s.now(), Connections: 1}
	return true, nil
}

func (s *MemoryStore) Disconnect(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return false, nil
	}
	e.Connections--
	if e.Connections > 0 {
		return false, nil
	}
	delete(s.entries, userID)
	return true, nil
}

func (s *MemoryStore) SetStatus(_ context.Context, userID string, status models.PresenceStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok || e.Status == status {
		return false, nil
	}
	e.Status = status
	e.Since = s.now()
	return true, nil
}

// Touch - записи в памяти умирают вместе с процессом, продлевать нечего
func (s *MemoryStore) Touch(_ context.Context, _ string) error { return nil }

func (s *MemoryStore) Get(_ context.Context, userID string) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[userID]
	if !ok {
		return nil, false, nil
	}
	cp := *e
	return &cp, true, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries)), nil
}

func (s *MemoryStore) Close() error { return nil }
