package milestone

import (
	"context"
	"sort"
	"sync"

	id "fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	milestones map[id.MilestoneID]*Milestone
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{milestones: make(map[id.MilestoneID]*Milestone)}
}

func (s *InMemoryStore) Create(_ context.Context, m *Milestone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.milestones[m.ID]; exists {
		return sentinel.ErrConflict
	}
	s.milestones[m.ID] = m.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, milestoneID id.MilestoneID) (*Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.milestones[milestoneID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, m *Milestone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.milestones[m.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.milestones[m.ID] = m.Clone()
	return nil
}

func (s *InMemoryStore) ListByProject(_ context.Context, projectID id.ProjectID) ([]*Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Milestone
	for _, m := range s.milestones {
		if m.ProjectID == projectID {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
