package researcher

import (
	"strings"
	"time"

	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
)

const (
	// InitialReputation is assigned on registration, including
	// re-registration: overwriting a record resets reputation.
	InitialReputation = 100
	// ReputationReward is added for every verified milestone payout.
	ReputationReward = 10
)

// Researcher is the identity record behind every project.
//
// Invariants:
//   - Name and Institution are non-empty
//   - Reputation is non-negative, starts at InitialReputation
//   - Projects is append-only and survives re-registration
//
// Verified is reserved for an external attestation process; no operation in
// this core flips it.
type Researcher struct {
	Principal    id.Principal
	Name         string
	Institution  string
	Expertise    []string
	Reputation   uint64
	Verified     bool
	Projects     []id.ProjectID
	RegisteredAt time.Time
}

// New validates and builds a fresh registration record.
func New(principal id.Principal, name, institution string, expertise []string, now time.Time) (*Researcher, error) {
	name = strings.TrimSpace(name)
	institution = strings.TrimSpace(institution)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "researcher name must not be empty")
	}
	if institution == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "institution must not be empty")
	}
	return &Researcher{
		Principal:    principal,
		Name:         name,
		Institution:  institution,
		Expertise:    append([]string{}, expertise...),
		Reputation:   InitialReputation,
		RegisteredAt: now,
	}, nil
}

// Clone returns a deep copy so store reads never hand out shared slices.
func (r *Researcher) Clone() *Researcher {
	cp := *r
	cp.Expertise = append([]string{}, r.Expertise...)
	cp.Projects = append([]id.ProjectID{}, r.Projects...)
	return &cp
}
