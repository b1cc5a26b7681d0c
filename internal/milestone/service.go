package milestone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fundledger/internal/escrow"
	"fundledger/internal/ledger"
	milestonemetrics "fundledger/internal/milestone/metrics"
	"fundledger/internal/project"
	"fundledger/internal/researcher"
	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	audit "fundledger/pkg/platform/audit"
	"fundledger/pkg/platform/sentinel"
	"fundledger/pkg/requestcontext"
)

var tracer = otel.Tracer("fundledger/internal/milestone")

// ProjectDirectory is the slice of the project store the milestone engine
// needs: status reads and the Funded→InProgress transition.
type ProjectDirectory interface {
	FindByID(ctx context.Context, projectID id.ProjectID) (*project.Project, error)
	Update(ctx context.Context, p *project.Project) error
}

// ResearcherLedger is the researcher-side effect of a payout.
type ResearcherLedger interface {
	BumpReputation(ctx context.Context, principal id.Principal, delta uint64) error
}

// VerifierSet answers whether a caller may verify milestones.
type VerifierSet interface {
	IsVerifier(ctx context.Context, principal id.Principal) (bool, error)
}

// FeePolicySource supplies the platform fee at verification time.
type FeePolicySource interface {
	FeePolicy(ctx context.Context) (escrow.FeePolicy, error)
}

// ProjectViewInvalidator drops cached project views after milestone-driven
// status changes.
type ProjectViewInvalidator interface {
	Invalidate(ctx context.Context, projectID id.ProjectID) error
}

// Service owns milestone creation, completion, and the verification step
// that triggers the one-and-only payout for a milestone.
type Service struct {
	milestones  Store
	projects    ProjectDirectory
	researchers ResearcherLedger
	verifiers   VerifierSet
	fees        FeePolicySource
	payouts     *escrow.Engine
	seq         *ledger.Sequence
	tx          ledger.Tx
	invalidator ProjectViewInvalidator
	metrics     *milestonemetrics.Metrics
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

func WithMetrics(m *milestonemetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithProjectViewInvalidator(inv ProjectViewInvalidator) Option {
	return func(s *Service) { s.invalidator = inv }
}

func NewService(milestones Store, projects ProjectDirectory, researchers ResearcherLedger,
	verifiers VerifierSet, fees FeePolicySource, payouts *escrow.Engine,
	seq *ledger.Sequence, tx ledger.Tx, opts ...Option) (*Service, error) {

	if milestones == nil || projects == nil || researchers == nil {
		return nil, fmt.Errorf("milestone, project, and researcher stores are required")
	}
	if verifiers == nil || fees == nil || payouts == nil {
		return nil, fmt.Errorf("verifier set, fee policy source, and payout engine are required")
	}
	if seq == nil || tx == nil {
		return nil, fmt.Errorf("sequence and ledger tx are required")
	}
	s := &Service{
		milestones:  milestones,
		projects:    projects,
		researchers: researchers,
		verifiers:   verifiers,
		fees:        fees,
		payouts:     payouts,
		seq:         seq,
		tx:          tx,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create adds a milestone to a funded project. Restricted to the project's
// own researcher.
func (s *Service) Create(ctx context.Context, projectID id.ProjectID, description string, amount id.Amount) (id.MilestoneID, error) {
	caller := requestcontext.Principal(ctx)
	if caller.IsZero() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}

	var milestoneID id.MilestoneID
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.loadProject(txCtx, projectID)
		if err != nil {
			return err
		}
		if p.Researcher != caller {
			return dErrors.New(dErrors.CodeUnauthorized, "only the project's researcher may create milestones")
		}
		if err := p.CanCreateMilestone(); err != nil {
			return err
		}

		m, err := New(projectID, description, amount, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		m.ID = id.MilestoneID(s.seq.Next())

		if err := s.milestones.Create(txCtx, m); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create milestone")
		}
		milestoneID = m.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.MilestonesCreated.Inc()
	}
	s.emit(ctx, audit.Event{
		Category:    audit.CategoryOperations,
		Principal:   caller,
		Action:      audit.ActionMilestoneCreated,
		ProjectID:   projectID,
		MilestoneID: milestoneID,
		Amount:      amount,
	})
	s.logger.InfoContext(ctx, "milestone created",
		"milestone_id", milestoneID.String(), "project_id", projectID.String())
	return milestoneID, nil
}

// Complete records the deliverable evidence for a milestone. The first
// completion on a Funded project moves it to InProgress; later completions
// leave the status alone.
func (s *Service) Complete(ctx context.Context, milestoneID id.MilestoneID, evidence string) error {
	caller := requestcontext.Principal(ctx)
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}

	var (
		projectID id.ProjectID
		beganWork bool
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		m, err := s.loadMilestone(txCtx, milestoneID)
		if err != nil {
			return err
		}
		p, err := s.loadProject(txCtx, m.ProjectID)
		if err != nil {
			return err
		}
		if p.Researcher != caller {
			return dErrors.New(dErrors.CodeUnauthorized, "only the project's researcher may complete milestones")
		}

		if err := m.Complete(evidence, requestcontext.Now(txCtx)); err != nil {
			return err
		}
		if err := s.milestones.Update(txCtx, m); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist completion")
		}

		if p.BeginWork() {
			if err := s.projects.Update(txCtx, p); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist project status")
			}
			beganWork = true
		}
		projectID = p.ID
		return nil
	})
	if err != nil {
		return err
	}

	if beganWork {
		s.invalidateView(ctx, projectID)
	}
	if s.metrics != nil {
		s.metrics.MilestonesCompleted.Inc()
	}
	s.emit(ctx, audit.Event{
		Category:    audit.CategoryOperations,
		Principal:   caller,
		Action:      audit.ActionMilestoneCompleted,
		ProjectID:   projectID,
		MilestoneID: milestoneID,
	})
	s.logger.InfoContext(ctx, "milestone completed",
		"milestone_id", milestoneID.String(), "began_work", beganWork)
	return nil
}

// Verify attests a completed milestone and releases its funds exactly once.
//
// Commit order inside the serialized transaction:
//
//  1. all preconditions, including payout feasibility (CanCover)
//  2. verified flag persisted, the single "already paid" marker
//  3. both transfer legs
//  4. reputation bump
//
// A retried or re-entered call after step 2 observes verified==true and is
// rejected with InvalidState; a payout failure after step 2 rolls the flag
// back before the error escapes, so verified==true with no funds moved is
// never a terminal state.
func (s *Service) Verify(ctx context.Context, milestoneID id.MilestoneID) error {
	caller := requestcontext.Principal(ctx)
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}

	start := time.Now()
	ctx, span := tracer.Start(ctx, "milestone.Verify", trace.WithAttributes(
		attribute.String("milestone.id", milestoneID.String()),
	))
	defer span.End()

	var (
		payout    escrow.Payout
		projectID id.ProjectID
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		trusted, err := s.verifiers.IsVerifier(txCtx, caller)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verifier set")
		}
		if !trusted {
			return dErrors.New(dErrors.CodeUnauthorized, "caller is not a trusted verifier")
		}

		m, err := s.loadMilestone(txCtx, milestoneID)
		if err != nil {
			return err
		}
		if err := m.CanVerify(); err != nil {
			return err
		}

		p, err := s.loadProject(txCtx, m.ProjectID)
		if err != nil {
			return err
		}
		policy, err := s.fees.FeePolicy(txCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fee policy")
		}

		payout = escrow.Plan(p.Researcher, m.Amount, policy)
		if err := s.payouts.CanCover(txCtx, payout); err != nil {
			return err
		}

		// Point of no return: the paid marker goes first.
		m.MarkVerified()
		if err := s.milestones.Update(txCtx, m); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist verification")
		}

		if err := s.payouts.Release(txCtx, payout); err != nil {
			// Compensate so the paid marker and the missing funds never
			// disagree.
			m.Verified = false
			if revertErr := s.milestones.Update(txCtx, m); revertErr != nil {
				s.logger.ErrorContext(txCtx, "failed to revert verification after payout failure",
					"milestone_id", milestoneID.String(), "error", revertErr.Error())
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "payout failed; verification rolled back")
		}

		if err := s.researchers.BumpReputation(txCtx, p.Researcher, researcher.ReputationReward); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to bump reputation")
		}
		projectID = p.ID
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	if s.metrics != nil {
		s.metrics.MilestonesVerified.Inc()
		s.metrics.PayoutAmount.Add(float64(payout.Share))
		s.metrics.PlatformFeeAmount.Add(float64(payout.Fee))
		s.metrics.ObserveVerify(start)
	}
	s.emit(ctx, audit.Event{
		Category:    audit.CategoryLedger,
		Principal:   caller,
		Action:      audit.ActionMilestoneVerified,
		ProjectID:   projectID,
		MilestoneID: milestoneID,
	})
	s.emit(ctx, audit.Event{
		Category:    audit.CategoryLedger,
		Principal:   payout.Researcher,
		Action:      audit.ActionFundsReleased,
		ProjectID:   projectID,
		MilestoneID: milestoneID,
		Amount:      payout.Total(),
	})
	s.logger.InfoContext(ctx, "milestone verified and funds released",
		"milestone_id", milestoneID.String(),
		"share", uint64(payout.Share),
		"fee", uint64(payout.Fee),
	)
	return nil
}

// Get returns a milestone by id.
func (s *Service) Get(ctx context.Context, milestoneID id.MilestoneID) (*Milestone, error) {
	return s.loadMilestone(ctx, milestoneID)
}

// ListByProject returns a project's milestones ordered by id.
func (s *Service) ListByProject(ctx context.Context, projectID id.ProjectID) ([]*Milestone, error) {
	if _, err := s.loadProject(ctx, projectID); err != nil {
		return nil, err
	}
	ms, err := s.milestones.ListByProject(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list milestones")
	}
	return ms, nil
}

// Total returns the number of milestones ever created.
func (s *Service) Total(ctx context.Context) uint64 {
	return s.seq.Current()
}

func (s *Service) loadMilestone(ctx context.Context, milestoneID id.MilestoneID) (*Milestone, error) {
	m, err := s.milestones.FindByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "milestone not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load milestone")
	}
	return m, nil
}

func (s *Service) loadProject(ctx context.Context, projectID id.ProjectID) (*project.Project, error) {
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
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, projectID); err != nil {
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
