package store

import (
	"context"
	"fmt"
	"sync"

	"fedreg/internal/domain"
)

// InMemoryStore mirrors the PostgreSQL store, including its upsert
// semantics, for unit tests and local runs without a database.
type InMemoryStore struct {
	mu     sync.RWMutex
	byKey  map[string]int
	regs   []domain.Regulation
	nextID int64
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{byKey: make(map[string]int), nextID: 1}
}

func (s *InMemoryStore) EnsureSchema(_ context.Context) error {
	return nil
}

func (s *InMemoryStore) Upsert(_ context.Context, reg domain.Regulation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := upsertKey(reg)
	if idx, ok := s.byKey[key]; ok {
		reg.ID = s.regs[idx].ID
		s.regs[idx] = reg
		return nil
	}
	reg.ID = s.nextID
	s.nextID++
	s.byKey[key] = len(s.regs)
	s.regs = append(s.regs, reg)
	return nil
}

func (s *InMemoryStore) ListByAgencyYear(_ context.Context, agencyID int64, year int) ([]domain.Regulation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Regulation
	for _, r := range s.regs {
		if r.AgencyID == agencyID && r.Date.Year() == year {
			out = append(out, r)
		}
	}
	return out, nil
}

func upsertKey(reg domain.Regulation) string {
	return fmt.Sprintf("%d|%d|%s|%s|%s|%s|%s|%s",
		reg.AgencyID,
		reg.Reference.Title,
		reg.Reference.Subtitle,
		reg.Reference.Chapter,
		reg.Reference.Subchapter,
		reg.Reference.Part,
		reg.Reference.Subpart,
		reg.Date.Format("2006-01-02"),
	)
}
