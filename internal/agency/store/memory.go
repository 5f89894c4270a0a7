package store

import (
	"context"
	"sort"
	"sync"

	"fedreg/internal/domain"
)

// InMemoryStore mirrors the PostgreSQL store for unit tests and local
// runs without a database.
type InMemoryStore struct {
	mu       sync.RWMutex
	agencies map[int64]domain.Agency
	nextID   int64
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{agencies: make(map[int64]domain.Agency), nextID: 1}
}

func (s *InMemoryStore) EnsureSchema(_ context.Context) error {
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.agencies), nil
}

func (s *InMemoryStore) InsertBatch(_ context.Context, agencies []domain.Agency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range agencies {
		a.ID = s.nextID
		s.nextID++
		s.agencies[a.ID] = a
	}
	return nil
}

func (s *InMemoryStore) IDsBySlug(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[string]int64, len(s.agencies))
	for id, a := range s.agencies {
		ids[a.Slug] = id
	}
	return ids, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (domain.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agencies[id]
	if !ok {
		return domain.Agency{}, ErrNotFound
	}
	return a, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]domain.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agencies := make([]domain.Agency, 0, len(s.agencies))
	for _, a := range s.agencies {
		agencies = append(agencies, a)
	}
	sort.Slice(agencies, func(i, j int) bool { return agencies[i].ID < agencies[j].ID })
	return agencies, nil
}
