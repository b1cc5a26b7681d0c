package escrow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/sentinel"
)

func TestSplit_Exactness(t *testing.T) {
	amounts := []id.Amount{1, 9_999, 10_000, 123_456_789}
	fees := []uint32{0, 250, 1_000}

	for _, amount := range amounts {
		for _, bps := range fees {
			share, fee := Split(amount, bps)
			assert.Equal(t, amount, share+fee,
				"share+fee must equal amount exactly for amount=%d bps=%d", amount, bps)
		}
	}
}

func TestSplit_FloorsFee(t *testing.T) {
	// 2.5% of 400 is exactly 10.
	share, fee := Split(400, 250)
	assert.Equal(t, id.Amount(390), share)
	assert.Equal(t, id.Amount(10), fee)

	// 2.5% of 1 floors to 0; the remainder stays with the researcher.
	share, fee = Split(1, 250)
	assert.Equal(t, id.Amount(1), share)
	assert.Equal(t, id.Amount(0), fee)

	// 10% of 9999 floors to 999.
	share, fee = Split(9_999, 1_000)
	assert.Equal(t, id.Amount(9_000), share)
	assert.Equal(t, id.Amount(999), fee)
}

func TestSplit_NoOverflowNearMaxUint64(t *testing.T) {
	const huge = id.Amount(1<<64 - 1)
	share, fee := Split(huge, 1_000)
	assert.Equal(t, huge, share+fee)
	assert.Equal(t, huge/10, fee)
}

func TestMemoryTreasury(t *testing.T) {
	ctx := context.Background()
	treasury := NewMemoryTreasury()

	t.Run("deposit accumulates the pool", func(t *testing.T) {
		require.NoError(t, treasury.Deposit(ctx, 600))
		require.NoError(t, treasury.Deposit(ctx, 500))
		pool, err := treasury.Pool(ctx)
		require.NoError(t, err)
		assert.Equal(t, id.Amount(1_100), pool)
	})

	t.Run("transfer debits pool and credits account", func(t *testing.T) {
		require.NoError(t, treasury.Transfer(ctx, "alice", 400))

		pool, err := treasury.Pool(ctx)
		require.NoError(t, err)
		assert.Equal(t, id.Amount(700), pool)

		balance, err := treasury.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, id.Amount(400), balance)
	})

	t.Run("transfer beyond the pool fails and moves nothing", func(t *testing.T) {
		err := treasury.Transfer(ctx, "bob", 10_000)
		require.ErrorIs(t, err, sentinel.ErrInsufficientFunds)

		pool, err := treasury.Pool(ctx)
		require.NoError(t, err)
		assert.Equal(t, id.Amount(700), pool)

		balance, err := treasury.BalanceOf(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, id.Amount(0), balance)
	})

	t.Run("sweep drains the entire pool", func(t *testing.T) {
		swept, err := treasury.Sweep(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, id.Amount(700), swept)

		pool, err := treasury.Pool(ctx)
		require.NoError(t, err)
		assert.Equal(t, id.Amount(0), pool)

		balance, err := treasury.BalanceOf(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, id.Amount(700), balance)
	})
}

func TestEngine_ReleaseMovesBothLegs(t *testing.T) {
	ctx := context.Background()
	treasury := NewMemoryTreasury()
	require.NoError(t, treasury.Deposit(ctx, 1_100))

	engine, err := NewEngine(treasury)
	require.NoError(t, err)

	payout := Plan("researcher", 400, FeePolicy{Bps: 250, Recipient: "platform"})
	require.NoError(t, engine.CanCover(ctx, payout))
	require.NoError(t, engine.Release(ctx, payout))

	researcherBalance, _ := treasury.BalanceOf(ctx, "researcher")
	platformBalance, _ := treasury.BalanceOf(ctx, "platform")
	pool, _ := treasury.Pool(ctx)

	assert.Equal(t, id.Amount(390), researcherBalance)
	assert.Equal(t, id.Amount(10), platformBalance)
	assert.Equal(t, id.Amount(700), pool)
}

func TestEngine_CanCoverRejectsUnderfundedPool(t *testing.T) {
	ctx := context.Background()
	treasury := NewMemoryTreasury()
	require.NoError(t, treasury.Deposit(ctx, 100))

	engine, err := NewEngine(treasury)
	require.NoError(t, err)

	payout := Plan("researcher", 400, FeePolicy{Bps: 250, Recipient: "platform"})
	err = engine.CanCover(ctx, payout)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}
