package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "fundledger/pkg/domain"
)

// EventCategory classifies ledger events by their primary purpose. This
// enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryLedger covers money-moving and status-changing events. These
	// require tamper-evident storage and long retention.
	// Examples: contributions, goal reached, payouts, emergency withdraw.
	CategoryLedger EventCategory = "ledger"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	// Examples: registrations, milestone creation, parameter changes.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key ledger actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID     `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	// Principal is the acting caller: the contributor, the researcher, the
	// verifier, or the platform owner depending on the action.
	Principal   id.Principal   `json:"principal"`
	Action      Action         `json:"action"`
	ProjectID   id.ProjectID   `json:"project_id,omitempty"`
	MilestoneID id.MilestoneID `json:"milestone_id,omitempty"`
	Amount      id.Amount      `json:"amount,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
}

// Action names a ledger state transition.
type Action string

const (
	ActionResearcherRegistered Action = "researcher_registered"
	ActionProjectCreated       Action = "project_created"
	ActionProjectFunded        Action = "project_funded"
	ActionGoalReached          Action = "goal_reached"
	ActionMilestoneCreated     Action = "milestone_created"
	ActionMilestoneCompleted   Action = "milestone_completed"
	ActionMilestoneVerified    Action = "milestone_verified"
	ActionFundsReleased        Action = "funds_released"
	ActionFeeUpdated           Action = "fee_updated"
	ActionVerifierUpdated      Action = "verifier_updated"
	ActionEmergencyWithdraw    Action = "emergency_withdraw"
)

// Emitter is what services hold: something that accepts finished events.
// The publisher implements it; tests pass a memory-store-backed publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Sink receives emitted events. Implementations must be safe for concurrent
// use.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a sink whose events can also be queried back, used in tests and
// for the in-process trail.
type Store interface {
	Sink
	ListByPrincipal(ctx context.Context, principal id.Principal) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
}
