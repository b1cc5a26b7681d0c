package project

import (
	"context"

	id "fundledger/pkg/domain"
)

// Store persists project aggregates. Implementations return sentinel errors
// for infrastructure facts; the service translates them.
type Store interface {
	Create(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, projectID id.ProjectID) (*Project, error)
	Update(ctx context.Context, p *Project) error
}
