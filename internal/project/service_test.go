package project_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundledger/internal/escrow"
	"fundledger/internal/ledger"
	"fundledger/internal/project"
	"fundledger/internal/researcher"
	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/testutil"
)

var (
	alice = id.Principal("alice")
	bob   = id.Principal("bob")
	carol = id.Principal("carol")
	t0    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc      *project.Service
	treasury *escrow.MemoryTreasury
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tx := ledger.NewTx()
	researchers := researcher.NewInMemoryStore()
	treasury := escrow.NewMemoryTreasury()

	researcherSvc, err := researcher.NewService(researchers, tx)
	require.NoError(t, err)
	_, err = researcherSvc.Register(testutil.Ctx(alice, t0), "Alice", "MIT", nil)
	require.NoError(t, err)

	svc, err := project.NewService(project.NewInMemoryStore(), researchers, treasury,
		ledger.NewSequence(), tx)
	require.NoError(t, err)
	return &fixture{svc: svc, treasury: treasury}
}

func (f *fixture) create(t *testing.T, goal id.Amount) id.ProjectID {
	t.Helper()
	projectID, err := f.svc.Create(testutil.Ctx(alice, t0), project.CreateInput{
		Title: "Protein folding atlas", Goal: goal, DurationDays: 30,
	})
	require.NoError(t, err)
	return projectID
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	projectID := f.create(t, 1_000)
	assert.Equal(t, id.ProjectID(1), projectID)
	assert.Equal(t, uint64(1), f.svc.Total(testutil.CtxAt(t0)))

	view, err := f.svc.GetView(testutil.CtxAt(t0), projectID)
	require.NoError(t, err)
	assert.Equal(t, project.StatusActive, view.Status)
	assert.Equal(t, alice, view.Researcher)
}

func TestCreate_UnregisteredCaller(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(testutil.Ctx(bob, t0), project.CreateInput{
		Title: "No registry entry", Goal: 100, DurationDays: 1,
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

// A rejected create must not burn an id: the total stays equal to the highest
// assigned id.
func TestCreate_FailedValidationDoesNotBurnIDs(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(testutil.Ctx(alice, t0), project.CreateInput{
		Title: "", Goal: 100, DurationDays: 1,
	})
	require.Error(t, err)

	projectID := f.create(t, 1_000)
	assert.Equal(t, id.ProjectID(1), projectID)
	assert.Equal(t, uint64(1), f.svc.Total(testutil.CtxAt(t0)))
}

func TestFund(t *testing.T) {
	f := newFixture(t)
	projectID := f.create(t, 1_000)

	require.NoError(t, f.svc.Fund(testutil.Ctx(bob, t0), projectID, 600))
	require.NoError(t, f.svc.Fund(testutil.Ctx(carol, t0), projectID, 500))

	view, err := f.svc.GetView(testutil.CtxAt(t0), projectID)
	require.NoError(t, err)
	assert.Equal(t, project.StatusFunded, view.Status)
	assert.Equal(t, id.Amount(1_100), view.CurrentFunding)

	pool, err := f.treasury.Pool(testutil.CtxAt(t0))
	require.NoError(t, err)
	assert.Equal(t, id.Amount(1_100), pool, "every accepted contribution lands in the pool")

	contributors, err := f.svc.Contributors(testutil.CtxAt(t0), projectID)
	require.NoError(t, err)
	assert.Equal(t, []id.Principal{bob, carol}, contributors)

	amount, err := f.svc.Contribution(testutil.CtxAt(t0), projectID, bob)
	require.NoError(t, err)
	assert.Equal(t, id.Amount(600), amount)

	amount, err = f.svc.Contribution(testutil.CtxAt(t0), projectID, alice)
	require.NoError(t, err)
	assert.Equal(t, id.Amount(0), amount, "non-contributor reads zero, not an error")
}

func TestFund_Rejections(t *testing.T) {
	f := newFixture(t)
	projectID := f.create(t, 1_000)

	t.Run("unknown project", func(t *testing.T) {
		err := f.svc.Fund(testutil.Ctx(bob, t0), id.ProjectID(42), 100)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("zero amount", func(t *testing.T) {
		err := f.svc.Fund(testutil.Ctx(bob, t0), projectID, 0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("past deadline", func(t *testing.T) {
		err := f.svc.Fund(testutil.Ctx(bob, t0.Add(31*24*time.Hour)), projectID, 100)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("already funded", func(t *testing.T) {
		require.NoError(t, f.svc.Fund(testutil.Ctx(bob, t0), projectID, 1_000))
		err := f.svc.Fund(testutil.Ctx(carol, t0), projectID, 100)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

		// The rejected contribution must not touch the pool.
		pool, err := f.treasury.Pool(testutil.CtxAt(t0))
		require.NoError(t, err)
		assert.Equal(t, id.Amount(1_000), pool)
	})
}

// Concurrent contributions are serialized by the transaction runner: the
// recorded total equals the sum of all accepted contributions and exactly one
// of them observes the goal flip.
func TestFund_ConcurrentContributions(t *testing.T) {
	f := newFixture(t)
	projectID := f.create(t, 10_000)

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = f.svc.Fund(testutil.Ctx(bob, t0), projectID, 100)
		}()
	}
	wg.Wait()

	view, err := f.svc.GetView(testutil.CtxAt(t0), projectID)
	require.NoError(t, err)
	assert.Equal(t, id.Amount(2_000), view.CurrentFunding)

	pool, err := f.treasury.Pool(testutil.CtxAt(t0))
	require.NoError(t, err)
	assert.Equal(t, id.Amount(2_000), pool)
}
