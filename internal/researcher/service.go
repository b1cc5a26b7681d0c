package researcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fundledger/internal/ledger"
	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	audit "fundledger/pkg/platform/audit"
	"fundledger/pkg/platform/sentinel"
	"fundledger/pkg/requestcontext"
)

// Service owns researcher registrations. Registration is idempotent by
// overwrite: a repeat call replaces name, institution, and expertise and
// resets reputation, but the owned-project list survives.
type Service struct {
	store  Store
	tx     ledger.Tx
	logger *slog.Logger
	events audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithEventEmitter(events audit.Emitter) Option {
	return func(s *Service) { s.events = events }
}

func NewService(store Store, tx ledger.Tx, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("researcher store is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("ledger tx is required")
	}
	s := &Service{store: store, tx: tx, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates or overwrites the caller's researcher record.
func (s *Service) Register(ctx context.Context, name, institution string, expertise []string) (*Researcher, error) {
	caller := requestcontext.Principal(ctx)
	if caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}

	var record *Researcher
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := New(caller, name, institution, expertise, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}

		// Overwrite semantics: everything resets except the owned projects,
		// which are appended to by project creation, not by registration.
		existing, err := s.store.FindByPrincipal(txCtx, caller)
		switch {
		case err == nil:
			r.Projects = existing.Projects
		case errors.Is(err, sentinel.ErrNotFound):
			// first registration
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load researcher")
		}

		if err := s.store.Save(txCtx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save researcher")
		}
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Category:  audit.CategoryOperations,
		Principal: caller,
		Action:    audit.ActionResearcherRegistered,
	})
	s.logger.InfoContext(ctx, "researcher registered",
		"principal", caller.String(),
		"institution", record.Institution,
	)
	return record, nil
}

// Get returns the researcher record for a principal.
func (s *Service) Get(ctx context.Context, principal id.Principal) (*Researcher, error) {
	if principal.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "principal is required")
	}
	r, err := s.store.FindByPrincipal(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "researcher not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load researcher")
	}
	return r, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit ledger event",
			"action", string(event.Action),
			"error", err.Error(),
		)
	}
}
