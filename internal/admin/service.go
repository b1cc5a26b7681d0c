// Package admin covers the operations reserved for the platform owner:
// maintaining the trusted-verifier set, tuning the fee, and the emergency
// sweep of the pooled balance.
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"fundledger/internal/escrow"
	"fundledger/internal/ledger"
	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	audit "fundledger/pkg/platform/audit"
	"fundledger/pkg/requestcontext"
)

type Service struct {
	store    Store
	treasury escrow.Treasury
	owner    id.Principal
	tx       ledger.Tx
	logger   *slog.Logger
	events   audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithEventEmitter(events audit.Emitter) Option {
	return func(s *Service) { s.events = events }
}

func NewService(store Store, treasury escrow.Treasury, owner id.Principal, tx ledger.Tx, opts ...Option) (*Service, error) {
	if store == nil || treasury == nil {
		return nil, fmt.Errorf("admin store and treasury are required")
	}
	if owner.IsZero() {
		return nil, fmt.Errorf("platform owner is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("ledger tx is required")
	}
	s := &Service{store: store, treasury: treasury, owner: owner, tx: tx, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetVerifier adds or removes a trusted verifier.
func (s *Service) SetVerifier(ctx context.Context, principal id.Principal, trusted bool) error {
	if err := s.requireOwner(ctx); err != nil {
		return err
	}
	if principal.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "verifier principal is required")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.SetVerifier(txCtx, principal, trusted); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verifier set")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Category:  audit.CategoryOperations,
		Principal: s.owner,
		Action:    audit.ActionVerifierUpdated,
	})
	s.logger.InfoContext(ctx, "verifier set updated",
		"verifier", principal.String(), "trusted", trusted)
	return nil
}

// SetPlatformFee updates the fee, rejecting anything above the 10% cap.
func (s *Service) SetPlatformFee(ctx context.Context, bps uint32) error {
	if err := s.requireOwner(ctx); err != nil {
		return err
	}
	if bps > escrow.MaxFeeBps {
		return dErrors.Newf(dErrors.CodeLimitExceeded, "fee must not exceed %d bps", escrow.MaxFeeBps)
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.SetFeeBps(txCtx, bps); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update fee")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.emit(ctx, audit.Event{
		Category:  audit.CategoryOperations,
		Principal: s.owner,
		Action:    audit.ActionFeeUpdated,
	})
	s.logger.InfoContext(ctx, "platform fee updated", "bps", bps)
	return nil
}

// EmergencyWithdraw sweeps the entire pooled balance to the owner, bypassing
// all project and milestone accounting. Escape hatch, not a normal-path
// operation.
func (s *Service) EmergencyWithdraw(ctx context.Context) (id.Amount, error) {
	if err := s.requireOwner(ctx); err != nil {
		return 0, err
	}

	var swept id.Amount
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		amount, err := s.treasury.Sweep(txCtx, s.owner)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to sweep pooled balance")
		}
		swept = amount
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.emit(ctx, audit.Event{
		Category:  audit.CategoryLedger,
		Principal: s.owner,
		Action:    audit.ActionEmergencyWithdraw,
		Amount:    swept,
	})
	s.logger.WarnContext(ctx, "emergency withdraw executed", "amount", uint64(swept))
	return swept, nil
}

func (s *Service) requireOwner(ctx context.Context) error {
	if requestcontext.Principal(ctx) != s.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "operation restricted to the platform owner")
	}
	return nil
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
