package admin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundledger/internal/admin"
	"fundledger/internal/escrow"
	"fundledger/internal/ledger"
	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/testutil"
)

var (
	owner        = id.Principal("owner")
	feeRecipient = id.Principal("fee-recipient")
	carol        = id.Principal("carol")
	t0           = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc      *admin.Service
	store    *admin.InMemoryStore
	treasury *escrow.MemoryTreasury
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := admin.NewInMemoryStore(owner, feeRecipient)
	treasury := escrow.NewMemoryTreasury()
	svc, err := admin.NewService(store, treasury, owner, ledger.NewTx())
	require.NoError(t, err)
	return &fixture{svc: svc, store: store, treasury: treasury}
}

func TestDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trusted, err := f.store.IsVerifier(ctx, owner)
	require.NoError(t, err)
	assert.True(t, trusted, "owner is a verifier from the start")

	policy, err := f.store.FeePolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(admin.DefaultFeeBps), policy.Bps)
	assert.Equal(t, feeRecipient, policy.Recipient)
}

func TestSetVerifier(t *testing.T) {
	f := newFixture(t)

	t.Run("owner grants and revokes", func(t *testing.T) {
		require.NoError(t, f.svc.SetVerifier(testutil.Ctx(owner, t0), carol, true))
		trusted, err := f.store.IsVerifier(context.Background(), carol)
		require.NoError(t, err)
		assert.True(t, trusted)

		require.NoError(t, f.svc.SetVerifier(testutil.Ctx(owner, t0), carol, false))
		trusted, err = f.store.IsVerifier(context.Background(), carol)
		require.NoError(t, err)
		assert.False(t, trusted)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		err := f.svc.SetVerifier(testutil.Ctx(carol, t0), carol, true)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestSetPlatformFee(t *testing.T) {
	f := newFixture(t)

	t.Run("cap is inclusive", func(t *testing.T) {
		require.NoError(t, f.svc.SetPlatformFee(testutil.Ctx(owner, t0), escrow.MaxFeeBps))
		policy, err := f.store.FeePolicy(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint32(escrow.MaxFeeBps), policy.Bps)
	})

	t.Run("above the cap is rejected and the policy is unchanged", func(t *testing.T) {
		err := f.svc.SetPlatformFee(testutil.Ctx(owner, t0), escrow.MaxFeeBps+1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeLimitExceeded))

		policy, err := f.store.FeePolicy(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint32(escrow.MaxFeeBps), policy.Bps)
	})

	t.Run("zero fee is allowed", func(t *testing.T) {
		require.NoError(t, f.svc.SetPlatformFee(testutil.Ctx(owner, t0), 0))
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		err := f.svc.SetPlatformFee(testutil.Ctx(carol, t0), 100)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestEmergencyWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.treasury.Deposit(ctx, 1_500))

	t.Run("non-owner is rejected", func(t *testing.T) {
		_, err := f.svc.EmergencyWithdraw(testutil.Ctx(carol, t0))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("owner sweeps the whole pool", func(t *testing.T) {
		swept, err := f.svc.EmergencyWithdraw(testutil.Ctx(owner, t0))
		require.NoError(t, err)
		assert.Equal(t, id.Amount(1_500), swept)

		pool, err := f.treasury.Pool(ctx)
		require.NoError(t, err)
		assert.Equal(t, id.Amount(0), pool)

		balance, err := f.treasury.BalanceOf(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, id.Amount(1_500), balance)
	})

	t.Run("second sweep withdraws nothing", func(t *testing.T) {
		swept, err := f.svc.EmergencyWithdraw(testutil.Ctx(owner, t0))
		require.NoError(t, err)
		assert.Equal(t, id.Amount(0), swept)
	})
}
