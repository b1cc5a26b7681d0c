package project

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
)

var (
	alice = id.Principal("alice")
	bob   = id.Principal("bob")
	t0    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newProject(t *testing.T, goal id.Amount) *Project {
	t.Helper()
	p, err := New(alice, "Protein folding atlas", "desc", "biology", goal, 30, nil, t0)
	require.NoError(t, err)
	p.ID = 1
	return p
}

func TestNew_Validation(t *testing.T) {
	_, err := New(alice, "  ", "d", "a", 100, 30, nil, t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = New(alice, "Title", "d", "a", 0, 30, nil, t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = New(alice, "Title", "d", "a", 100, 0, nil, t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	// A duration past the time.Duration range would wrap the deadline into
	// the past; it must be rejected, not silently accepted.
	_, err = New(alice, "Title", "d", "a", 100, math.MaxUint64, nil, t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	p, err := New(alice, "Title", "d", "a", 100, 30, nil, t0)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, t0.Add(30*24*time.Hour), p.Deadline)

	p, err = New(alice, "Title", "d", "a", 100, maxDurationDays, nil, t0)
	require.NoError(t, err)
	assert.True(t, p.Deadline.After(t0), "the longest accepted duration still lands in the future")
}

func TestCanAcceptContribution(t *testing.T) {
	p := newProject(t, 1_000)

	assert.NoError(t, p.CanAcceptContribution(1, t0))

	t.Run("zero amount", func(t *testing.T) {
		err := p.CanAcceptContribution(0, t0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("deadline passed", func(t *testing.T) {
		err := p.CanAcceptContribution(1, p.Deadline)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState),
			"the deadline instant itself is already closed")
	})

	t.Run("funded project", func(t *testing.T) {
		funded := newProject(t, 1_000)
		funded.ApplyContribution(bob, 1_000)
		err := funded.CanAcceptContribution(1, t0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func TestApplyContribution(t *testing.T) {
	p := newProject(t, 1_000)

	assert.False(t, p.ApplyContribution(bob, 600))
	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, id.Amount(600), p.CurrentFunding)

	// The overshooting contribution flips to Funded and is kept whole.
	assert.True(t, p.ApplyContribution(bob, 500))
	assert.Equal(t, StatusFunded, p.Status)
	assert.Equal(t, id.Amount(1_100), p.CurrentFunding)

	assert.Equal(t, []id.Principal{bob}, p.Contributors(), "repeat contributor appears once")
	assert.Equal(t, id.Amount(1_100), p.ContributionOf(bob))
	assert.Equal(t, id.Amount(0), p.ContributionOf(alice))
}

func TestBeginWork(t *testing.T) {
	p := newProject(t, 100)

	assert.False(t, p.BeginWork(), "active project cannot begin work")

	p.ApplyContribution(bob, 100)
	assert.True(t, p.BeginWork())
	assert.Equal(t, StatusInProgress, p.Status)

	assert.False(t, p.BeginWork(), "transition fires once")
	assert.Equal(t, StatusInProgress, p.Status)
}

func TestCanCreateMilestone(t *testing.T) {
	p := newProject(t, 100)
	assert.True(t, dErrors.HasCode(p.CanCreateMilestone(), dErrors.CodeInvalidState))

	p.ApplyContribution(bob, 100)
	assert.NoError(t, p.CanCreateMilestone())

	p.BeginWork()
	assert.NoError(t, p.CanCreateMilestone())
}

func TestClone_IsolatesCollections(t *testing.T) {
	p := newProject(t, 1_000)
	p.ApplyContribution(bob, 100)

	cp := p.Clone()
	cp.ApplyContribution(alice, 200)

	assert.Equal(t, id.Amount(100), p.CurrentFunding)
	assert.Equal(t, []id.Principal{bob}, p.Contributors())
	assert.Equal(t, id.Amount(0), p.ContributionOf(alice))
}
