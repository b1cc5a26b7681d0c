// Package escrow holds the pooled contribution balance and the payout math
// that splits milestone releases between researcher and platform.
//
// The pool is deliberately undifferentiated: contributions-in and milestone
// payouts-out are independent ledgers with no per-project sub-balances and no
// cross-check between them. Payouts draw from whatever the pool holds.
package escrow

import (
	"context"
	"sync"

	id "fundledger/pkg/domain"
	"fundledger/pkg/platform/sentinel"
)

// Treasury is the pooled balance plus the credited per-account balances that
// payouts land on. Implementations must be safe for concurrent use; the
// serialized ledger transaction is still the authority for cross-entity
// atomicity.
type Treasury interface {
	// Deposit adds a contribution to the pool.
	Deposit(ctx context.Context, amount id.Amount) error
	// Transfer moves funds from the pool to an account. Returns
	// sentinel.ErrInsufficientFunds when the pool cannot cover it.
	Transfer(ctx context.Context, to id.Principal, amount id.Amount) error
	// Sweep drains the entire pool into an account and returns the swept
	// amount. Owner escape hatch, bypasses all project accounting.
	Sweep(ctx context.Context, to id.Principal) (id.Amount, error)
	// Pool returns the current pooled balance.
	Pool(ctx context.Context) (id.Amount, error)
	// BalanceOf returns the credited balance of an account.
	BalanceOf(ctx context.Context, account id.Principal) (id.Amount, error)
}

// MemoryTreasury is the in-process treasury backing the serialized ledger.
type MemoryTreasury struct {
	mu       sync.RWMutex
	pool     id.Amount
	accounts map[id.Principal]id.Amount
}

func NewMemoryTreasury() *MemoryTreasury {
	return &MemoryTreasury{accounts: make(map[id.Principal]id.Amount)}
}

func (t *MemoryTreasury) Deposit(_ context.Context, amount id.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pool += amount
	return nil
}

func (t *MemoryTreasury) Transfer(_ context.Context, to id.Principal, amount id.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pool < amount {
		return sentinel.ErrInsufficientFunds
	}
	t.pool -= amount
	t.accounts[to] += amount
	return nil
}

func (t *MemoryTreasury) Sweep(_ context.Context, to id.Principal) (id.Amount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	swept := t.pool
	t.pool = 0
	t.accounts[to] += swept
	return swept, nil
}

func (t *MemoryTreasury) Pool(_ context.Context) (id.Amount, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pool, nil
}

func (t *MemoryTreasury) BalanceOf(_ context.Context, account id.Principal) (id.Amount, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.accounts[account], nil
}
