package researcher

import (
	"context"
	"sync"

	id "fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu          sync.RWMutex
	researchers map[id.Principal]*Researcher
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{researchers: make(map[id.Principal]*Researcher)}
}

func (s *InMemoryStore) Save(_ context.Context, r *Researcher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.researchers[r.Principal] = r.Clone()
	return nil
}

func (s *InMemoryStore) FindByPrincipal(_ context.Context, principal id.Principal) (*Researcher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.researchers[principal]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *InMemoryStore) AppendProject(_ context.Context, principal id.Principal, projectID id.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.researchers[principal]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.Projects = append(r.Projects, projectID)
	return nil
}

func (s *InMemoryStore) BumpReputation(_ context.Context, principal id.Principal, delta uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.researchers[principal]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.Reputation += delta
	return nil
}
