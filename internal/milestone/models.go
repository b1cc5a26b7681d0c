package milestone

import (
	"strings"
	"time"

	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
)

// Milestone is a discrete, independently verifiable unit of research
// deliverable with its own payout amount.
//
// Invariants:
//   - Amount is positive
//   - Verified implies Completed
//   - Verified is the single "already paid" marker: it is committed before
//     the payout transfer so a retried or re-entered verification observes
//     it and is rejected
//
// Amount is deliberately NOT validated against the owning project's funding:
// contributions-in and milestone payouts-out are independent ledgers.
type Milestone struct {
	ID          id.MilestoneID
	ProjectID   id.ProjectID
	Description string
	Amount      id.Amount
	Completed   bool
	Verified    bool
	CompletedAt time.Time
	// Evidence is an opaque reference (e.g. a content hash) supplied at
	// completion; required non-empty.
	Evidence  string
	CreatedAt time.Time
}

// New validates and builds an open milestone. The id is assigned by the
// caller after validation.
func New(projectID id.ProjectID, description string, amount id.Amount, now time.Time) (*Milestone, error) {
	if strings.TrimSpace(description) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "milestone description must not be empty")
	}
	if amount == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "milestone amount must be positive")
	}
	return &Milestone{
		ProjectID:   projectID,
		Description: description,
		Amount:      amount,
		CreatedAt:   now,
	}, nil
}

// Complete records the deliverable evidence. Fails when already completed or
// when evidence is missing.
func (m *Milestone) Complete(evidence string, now time.Time) error {
	if m.Completed {
		return dErrors.New(dErrors.CodeInvalidState, "milestone already completed")
	}
	if strings.TrimSpace(evidence) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "completion evidence must not be empty")
	}
	m.Completed = true
	m.CompletedAt = now
	m.Evidence = evidence
	return nil
}

// CanVerify checks the verification preconditions without mutating. Use with
// MarkVerified so the payout feasibility check can sit between them.
func (m *Milestone) CanVerify() error {
	if !m.Completed {
		return dErrors.New(dErrors.CodeInvalidState, "milestone is not completed")
	}
	if m.Verified {
		return dErrors.New(dErrors.CodeInvalidState, "milestone already verified")
	}
	return nil
}

// MarkVerified flips the paid marker. Call CanVerify first.
func (m *Milestone) MarkVerified() {
	m.Verified = true
}

// Clone returns a copy for store reads.
func (m *Milestone) Clone() *Milestone {
	cp := *m
	return &cp
}
