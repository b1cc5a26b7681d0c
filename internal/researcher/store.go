package researcher

import (
	"context"

	id "fundledger/pkg/domain"
)

// Store persists researcher records. Implementations return sentinel errors
// (pkg/platform/sentinel) for infrastructure facts; the service translates
// them into domain errors.
type Store interface {
	// Save inserts or fully overwrites the record for its principal.
	Save(ctx context.Context, r *Researcher) error
	FindByPrincipal(ctx context.Context, principal id.Principal) (*Researcher, error)
	// AppendProject adds a project id to the researcher's owned list.
	AppendProject(ctx context.Context, principal id.Principal, projectID id.ProjectID) error
	// BumpReputation adds delta to the researcher's reputation counter.
	BumpReputation(ctx context.Context, principal id.Principal, delta uint64) error
}
