package milestone

import (
	"context"

	id "fundledger/pkg/domain"
)

// Store persists milestones. Implementations return sentinel errors for
// infrastructure facts; the service translates them.
type Store interface {
	Create(ctx context.Context, m *Milestone) error
	FindByID(ctx context.Context, milestoneID id.MilestoneID) (*Milestone, error)
	Update(ctx context.Context, m *Milestone) error
	ListByProject(ctx context.Context, projectID id.ProjectID) ([]*Milestone, error)
}
