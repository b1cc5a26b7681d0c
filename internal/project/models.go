package project

import (
	"math"
	"strings"
	"time"

	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
)

// maxDurationDays is the longest funding window whose deadline still fits in
// a time.Duration offset from now.
const maxDurationDays = uint64(math.MaxInt64 / (24 * int64(time.Hour)))

// Status is the project lifecycle state.
//
// Transitions in scope move forward only:
//
//	Active → Funded → InProgress
//
// Completed and Cancelled are reachable states in the enum but no operation
// in this core transitions into them; they are reserved for external
// governance.
type Status string

const (
	StatusActive     Status = "active"
	StatusFunded     Status = "funded"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Project is the aggregate root for a funded research project.
//
// Invariants:
//   - CurrentFunding == sum of all recorded contributions
//   - a principal appears in the contributor list iff their cumulative
//     contribution is non-zero
//   - CurrentFunding never decreases; contributions never decrease
//   - Status only moves forward for the operations in scope
//
// The contributor list and contribution map are owned exclusively by the
// aggregate: they are unexported and reachable only through Contributors and
// ContributionOf, so no caller can hold a mutable reference into them.
type Project struct {
	ID             id.ProjectID
	Researcher     id.Principal
	Title          string
	Description    string
	ResearchArea   string
	FundingGoal    id.Amount
	CurrentFunding id.Amount
	Deadline       time.Time
	Status         Status
	CreatedAt      time.Time
	// PlannedMilestones holds the proposal's milestone descriptions verbatim.
	// Informational only: actual Milestone entities are created separately
	// and are not linked to these texts.
	PlannedMilestones []string

	contributors  []id.Principal
	contributions map[id.Principal]id.Amount
}

// New validates and builds a project in the Active state. The id is assigned
// by the caller once validation has passed, so sequence slots are never
// burned by rejected creates.
func New(researcher id.Principal, title, description, area string,
	goal id.Amount, durationDays uint64, milestoneTexts []string, now time.Time) (*Project, error) {

	if strings.TrimSpace(title) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "project title must not be empty")
	}
	if goal == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "funding goal must be positive")
	}
	if durationDays == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "funding duration must be positive")
	}
	// time.Duration caps out near 292 years; anything longer would wrap the
	// deadline into the past.
	if durationDays > maxDurationDays {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "funding duration is too long")
	}

	return &Project{
		Researcher:        researcher,
		Title:             title,
		Description:       description,
		ResearchArea:      area,
		FundingGoal:       goal,
		Deadline:          now.Add(time.Duration(durationDays) * 24 * time.Hour),
		Status:            StatusActive,
		CreatedAt:         now,
		PlannedMilestones: append([]string{}, milestoneTexts...),
		contributions:     make(map[id.Principal]id.Amount),
	}, nil
}

// CanAcceptContribution checks every funding guard without mutating.
func (p *Project) CanAcceptContribution(amount id.Amount, now time.Time) error {
	if amount == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "contribution amount must be positive")
	}
	if p.Status != StatusActive {
		return dErrors.New(dErrors.CodeInvalidState, "project is not accepting contributions")
	}
	if !now.Before(p.Deadline) {
		return dErrors.New(dErrors.CodeInvalidState, "funding deadline has passed")
	}
	if p.CurrentFunding >= p.FundingGoal {
		return dErrors.New(dErrors.CodeInvalidState, "funding goal already reached")
	}
	return nil
}

// ApplyContribution records a contribution, evaluated against the
// post-increment total. The full amount is kept even when it overshoots the
// goal; excess stays in the pool and is not refunded. Returns true when this
// contribution flipped the project to Funded.
//
// Call CanAcceptContribution first; ApplyContribution assumes a validated
// amount.
func (p *Project) ApplyContribution(from id.Principal, amount id.Amount) (goalReached bool) {
	if _, seen := p.contributions[from]; !seen {
		p.contributors = append(p.contributors, from)
	}
	p.contributions[from] += amount
	p.CurrentFunding += amount

	if p.Status == StatusActive && p.CurrentFunding >= p.FundingGoal {
		p.Status = StatusFunded
		return true
	}
	return false
}

// CanCreateMilestone gates milestone creation on the project's status.
func (p *Project) CanCreateMilestone() error {
	if p.Status != StatusFunded && p.Status != StatusInProgress {
		return dErrors.New(dErrors.CodeInvalidState, "project is not in a funded state")
	}
	return nil
}

// BeginWork transitions Funded → InProgress on the first milestone
// completion. Returns false when the project is already past Funded so
// subsequent completions do not re-trigger the signal.
func (p *Project) BeginWork() bool {
	if p.Status != StatusFunded {
		return false
	}
	p.Status = StatusInProgress
	return true
}

// Contributors returns the contributor principals in insertion order.
func (p *Project) Contributors() []id.Principal {
	return append([]id.Principal{}, p.contributors...)
}

// ContributionOf returns the cumulative contribution for a principal, zero
// for non-contributors.
func (p *Project) ContributionOf(principal id.Principal) id.Amount {
	return p.contributions[principal]
}

// Clone returns a deep copy so store reads never share the aggregate's
// internal collections.
func (p *Project) Clone() *Project {
	cp := *p
	cp.PlannedMilestones = append([]string{}, p.PlannedMilestones...)
	cp.contributors = append([]id.Principal{}, p.contributors...)
	cp.contributions = make(map[id.Principal]id.Amount, len(p.contributions))
	for k, v := range p.contributions {
		cp.contributions[k] = v
	}
	return &cp
}
