package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "fundledger/pkg/domain-errors"
)

func TestParsePrincipal(t *testing.T) {
	p, err := ParsePrincipal("  alice  ")
	require.NoError(t, err)
	assert.Equal(t, Principal("alice"), p)

	_, err = ParsePrincipal("   ")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.True(t, Principal("").IsZero())
}

func TestParseProjectID(t *testing.T) {
	projectID, err := ParseProjectID("42")
	require.NoError(t, err)
	assert.Equal(t, ProjectID(42), projectID)
	assert.Equal(t, "42", projectID.String())

	for _, raw := range []string{"0", "-1", "abc", "", "1.5"} {
		_, err := ParseProjectID(raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "raw=%q", raw)
	}
}

func TestParseMilestoneID(t *testing.T) {
	milestoneID, err := ParseMilestoneID("7")
	require.NoError(t, err)
	assert.Equal(t, MilestoneID(7), milestoneID)

	_, err = ParseMilestoneID("0")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "zero is reserved for \"does not exist\"")
	assert.True(t, MilestoneID(0).IsZero())
}
