package researcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundledger/internal/ledger"
	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/testutil"
)

var (
	alice = id.Principal("alice")
	t0    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newService(t *testing.T) (*Service, *InMemoryStore) {
	t.Helper()
	store := NewInMemoryStore()
	svc, err := NewService(store, ledger.NewTx())
	require.NoError(t, err)
	return svc, store
}

func TestRegister(t *testing.T) {
	svc, _ := newService(t)

	r, err := svc.Register(testutil.Ctx(alice, t0), "Alice", "MIT", []string{"genomics"})
	require.NoError(t, err)
	assert.Equal(t, alice, r.Principal)
	assert.Equal(t, uint64(InitialReputation), r.Reputation)
	assert.Equal(t, t0, r.RegisteredAt)
	assert.Empty(t, r.Projects)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Register(testutil.Ctx(alice, t0), "  ", "MIT", nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = svc.Register(testutil.Ctx(alice, t0), "Alice", "", nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = svc.Register(testutil.CtxAt(t0), "Alice", "MIT", nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized), "anonymous registration is rejected")
}

// Re-registration overwrites the profile and resets reputation, but the
// owned-project list survives.
func TestRegister_OverwriteResetsReputationKeepsProjects(t *testing.T) {
	svc, store := newService(t)
	ctx := testutil.Ctx(alice, t0)

	_, err := svc.Register(ctx, "Alice", "MIT", []string{"genomics"})
	require.NoError(t, err)
	require.NoError(t, store.AppendProject(ctx, alice, id.ProjectID(1)))
	require.NoError(t, store.BumpReputation(ctx, alice, 10))

	r, err := svc.Register(testutil.Ctx(alice, t0.Add(time.Hour)), "Alice B.", "Stanford", []string{"proteomics"})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", r.Name)
	assert.Equal(t, "Stanford", r.Institution)
	assert.Equal(t, uint64(InitialReputation), r.Reputation, "reputation resets on overwrite")
	assert.Equal(t, []id.ProjectID{1}, r.Projects, "project ownership survives overwrite")
	assert.Equal(t, t0.Add(time.Hour), r.RegisteredAt)
}

func TestGet(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Get(testutil.CtxAt(t0), alice)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = svc.Register(testutil.Ctx(alice, t0), "Alice", "MIT", nil)
	require.NoError(t, err)

	r, err := svc.Get(testutil.CtxAt(t0), alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", r.Name)
}

func TestStore_CloneIsolation(t *testing.T) {
	svc, _ := newService(t)

	r, err := svc.Register(testutil.Ctx(alice, t0), "Alice", "MIT", []string{"genomics"})
	require.NoError(t, err)
	r.Expertise[0] = "mutated"

	fresh, err := svc.Get(testutil.CtxAt(t0), alice)
	require.NoError(t, err)
	assert.Equal(t, "genomics", fresh.Expertise[0], "store reads must not share slices with callers")
}
