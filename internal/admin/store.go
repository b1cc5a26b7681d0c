package admin

import (
	"context"
	"sync"

	"fundledger/internal/escrow"
	id "fundledger/pkg/domain"
)

// DefaultFeeBps is the platform fee at deployment: 250 bps = 2.5%.
const DefaultFeeBps = 250

// Store holds the platform parameters and the trusted-verifier set.
type Store interface {
	IsVerifier(ctx context.Context, principal id.Principal) (bool, error)
	SetVerifier(ctx context.Context, principal id.Principal, trusted bool) error
	FeePolicy(ctx context.Context) (escrow.FeePolicy, error)
	SetFeeBps(ctx context.Context, bps uint32) error
}

// InMemoryStore seeds the deploying owner as the first trusted verifier and
// the fee at its default.
type InMemoryStore struct {
	mu        sync.RWMutex
	verifiers map[id.Principal]bool
	feeBps    uint32
	recipient id.Principal
}

func NewInMemoryStore(owner, feeRecipient id.Principal) *InMemoryStore {
	return &InMemoryStore{
		verifiers: map[id.Principal]bool{owner: true},
		feeBps:    DefaultFeeBps,
		recipient: feeRecipient,
	}
}

func (s *InMemoryStore) IsVerifier(_ context.Context, principal id.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verifiers[principal], nil
}

func (s *InMemoryStore) SetVerifier(_ context.Context, principal id.Principal, trusted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifiers[principal] = trusted
	return nil
}

func (s *InMemoryStore) FeePolicy(_ context.Context) (escrow.FeePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return escrow.FeePolicy{Bps: s.feeBps, Recipient: s.recipient}, nil
}

func (s *InMemoryStore) SetFeeBps(_ context.Context, bps uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeBps = bps
	return nil
}
