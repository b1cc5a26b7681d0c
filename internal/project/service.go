package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fundledger/internal/ledger"
	projectmetrics "fundledger/internal/project/metrics"
	"fundledger/internal/researcher"
	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	audit "fundledger/pkg/platform/audit"
	"fundledger/pkg/platform/sentinel"
	"fundledger/pkg/requestcontext"
)

var tracer = otel.Tracer("fundledger/internal/project")

// ResearcherDirectory is the slice of the researcher store the project
// lifecycle needs: existence checks and owned-project bookkeeping.
type ResearcherDirectory interface {
	FindByPrincipal(ctx context.Context, principal id.Principal) (*researcher.Researcher, error)
	AppendProject(ctx context.Context, principal id.Principal, projectID id.ProjectID) error
}

// Treasury is where accepted contributions are pooled. The pool is
// undifferentiated: deposits are not earmarked per project.
type Treasury interface {
	Deposit(ctx context.Context, amount id.Amount) error
}

// ViewCache is an optional read-model cache. Implementations must treat
// failures as misses; the store stays authoritative.
type ViewCache interface {
	Get(ctx context.Context, projectID id.ProjectID) (*View, bool, error)
	Set(ctx context.Context, view *View) error
	Invalidate(ctx context.Context, projectID id.ProjectID) error
}

// Service owns project creation, contribution intake, and the
// Active→Funded transition.
type Service struct {
	projects    Store
	researchers ResearcherDirectory
	treasury    Treasury
	seq         *ledger.Sequence
	tx          ledger.Tx
	cache       ViewCache
	metrics     *projectmetrics.Metrics
	logger      *slog.Logger
	events      audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithEventEmitter(events audit.Emitter) Option {
	return func(s *Service) { s.events = events }
}

func WithMetrics(m *projectmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithViewCache(c ViewCache) Option {
	return func(s *Service) { s.cache = c }
}

func NewService(projects Store, researchers ResearcherDirectory, treasury Treasury,
	seq *ledger.Sequence, tx ledger.Tx, opts ...Option) (*Service, error) {

	if projects == nil || researchers == nil || treasury == nil {
		return nil, fmt.Errorf("project store, researcher directory, and treasury are required")
	}
	if seq == nil || tx == nil {
		return nil, fmt.Errorf("sequence and ledger tx are required")
	}
	s := &Service{
		projects:    projects,
		researchers: researchers,
		treasury:    treasury,
		seq:         seq,
		tx:          tx,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateInput carries the proposal fields for a new project.
type CreateInput struct {
	Title          string
	Description    string
	ResearchArea   string
	Goal           id.Amount
	DurationDays   uint64
	MilestoneTexts []string
}

// Create registers a new project owned by the calling researcher and returns
// its assigned id.
func (s *Service) Create(ctx context.Context, in CreateInput) (id.ProjectID, error) {
	caller := requestcontext.Principal(ctx)
	if caller.IsZero() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}

	var projectID id.ProjectID
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.researchers.FindByPrincipal(txCtx, caller); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeUnauthorized, "caller is not a registered researcher")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load researcher")
		}

		p, err := New(caller, in.Title, in.Description, in.ResearchArea,
			in.Goal, in.DurationDays, in.MilestoneTexts, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}

		// Allocate the id only after validation so a rejected create never
		// burns a sequence slot: the total counter doubles as "highest
		// existing project id".
		p.ID = id.ProjectID(s.seq.Next())

		if err := s.projects.Create(txCtx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create project")
		}
		if err := s.researchers.AppendProject(txCtx, caller, p.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record project ownership")
		}
		projectID = p.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.ProjectsCreated.Inc()
	}
	s.emit(ctx, audit.Event{
		Category:  audit.CategoryOperations,
		Principal: caller,
		Action:    audit.ActionProjectCreated,
		ProjectID: projectID,
	})
	s.logger.InfoContext(ctx, "project created",
		"project_id", projectID.String(),
		"researcher", caller.String(),
	)
	return projectID, nil
}

// Fund records a contribution from the caller. The whole check-then-update
// sequence runs inside the serialized ledger transaction, so the goal check
// is always evaluated against the post-increment total and two concurrent
// contributions cannot both observe "not yet funded".
func (s *Service) Fund(ctx context.Context, projectID id.ProjectID, amount id.Amount) error {
	caller := requestcontext.Principal(ctx)
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}

	start := time.Now()
	ctx, span := tracer.Start(ctx, "project.Fund", trace.WithAttributes(
		attribute.String("project.id", projectID.String()),
	))
	defer span.End()

	var goalReached bool
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.projects.FindByID(txCtx, projectID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "project not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
		}

		if err := p.CanAcceptContribution(amount, requestcontext.Now(txCtx)); err != nil {
			return err
		}

		goalReached = p.ApplyContribution(caller, amount)

		if err := s.projects.Update(txCtx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist contribution")
		}
		if err := s.treasury.Deposit(txCtx, amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to pool contribution")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.invalidateView(ctx, projectID)

	if s.metrics != nil {
		s.metrics.Contributions.Inc()
		s.metrics.ContributionAmount.Add(float64(amount))
		s.metrics.ObserveFund(start)
	}
	s.emit(ctx, audit.Event{
		Category:  audit.CategoryLedger,
		Principal: caller,
		Action:    audit.ActionProjectFunded,
		ProjectID: projectID,
		Amount:    amount,
	})
	if goalReached {
		if s.metrics != nil {
			s.metrics.GoalsReached.Inc()
		}
		s.emit(ctx, audit.Event{
			Category:  audit.CategoryLedger,
			Principal: caller,
			Action:    audit.ActionGoalReached,
			ProjectID: projectID,
		})
		s.logger.InfoContext(ctx, "funding goal reached", "project_id", projectID.String())
	}
	return nil
}

// GetView returns the project read model, served from cache when fresh.
func (s *Service) GetView(ctx context.Context, projectID id.ProjectID) (*View, error) {
	if s.cache != nil {
		view, hit, err := s.cache.Get(ctx, projectID)
		if err != nil {
			s.logger.WarnContext(ctx, "project view cache read failed",
				"project_id", projectID.String(), "error", err.Error())
		} else if hit {
			return view, nil
		}
	}

	p, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	view := NewView(p)

	if s.cache != nil {
		if err := s.cache.Set(ctx, view); err != nil {
			s.logger.WarnContext(ctx, "project view cache write failed",
				"project_id", projectID.String(), "error", err.Error())
		}
	}
	return view, nil
}

// Contributors returns contributor principals in insertion order.
func (s *Service) Contributors(ctx context.Context, projectID id.ProjectID) ([]id.Principal, error) {
	p, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return p.Contributors(), nil
}

// Contribution returns the cumulative amount a principal has contributed,
// zero for non-contributors.
func (s *Service) Contribution(ctx context.Context, projectID id.ProjectID, principal id.Principal) (id.Amount, error) {
	p, err := s.load(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return p.ContributionOf(principal), nil
}

// Total returns the number of projects ever created.
func (s *Service) Total(ctx context.Context) uint64 {
	return s.seq.Current()
}

func (s *Service) load(ctx context.Context, projectID id.ProjectID) (*Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
	}
	return p, nil
}

func (s *Service) invalidateView(ctx context.Context, projectID id.ProjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, projectID); err != nil {
		s.logger.WarnContext(ctx, "project view cache invalidation failed",
			"project_id", projectID.String(), "error", err.Error())
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit ledger event",
			"action", string(event.Action), "error", err.Error())
	}
}
