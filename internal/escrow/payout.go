package escrow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/sentinel"
)

// FeeDenominator is the basis-point scale: fees are expressed out of 10 000.
const FeeDenominator = 10_000

// MaxFeeBps caps the platform fee at 10%.
const MaxFeeBps = 1_000

// FeePolicy is the platform's cut and where it goes.
type FeePolicy struct {
	Bps       uint32
	Recipient id.Principal
}

// Split divides a milestone amount into the researcher's share and the
// platform fee. The fee floors on integer division, so
// share + fee == amount exactly and any rounding remainder stays with the
// researcher. The quotient/remainder decomposition keeps the multiply from
// overflowing for any uint64 amount.
func Split(amount id.Amount, feeBps uint32) (share, fee id.Amount) {
	bps := id.Amount(feeBps)
	fee = (amount/FeeDenominator)*bps + (amount%FeeDenominator)*bps/FeeDenominator
	return amount - fee, fee
}

// Payout is a computed, not-yet-executed release.
type Payout struct {
	Researcher id.Principal
	Share      id.Amount
	Recipient  id.Principal
	Fee        id.Amount
}

// Plan computes the payout for a milestone amount under a fee policy.
func Plan(researcher id.Principal, amount id.Amount, policy FeePolicy) Payout {
	share, fee := Split(amount, policy.Bps)
	return Payout{
		Researcher: researcher,
		Share:      share,
		Recipient:  policy.Recipient,
		Fee:        fee,
	}
}

// Total is the full amount the payout draws from the pool.
func (p Payout) Total() id.Amount {
	return p.Share + p.Fee
}

// Engine executes payouts against the treasury. It must only be invoked from
// inside the serialized ledger transaction, after the milestone's verified
// flag has been committed as the single "already paid" marker.
type Engine struct {
	treasury Treasury
	logger   *slog.Logger
}

type EngineOption func(*Engine)

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(treasury Treasury, opts ...EngineOption) (*Engine, error) {
	if treasury == nil {
		return nil, fmt.Errorf("treasury is required")
	}
	e := &Engine{treasury: treasury, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// CanCover checks, without moving funds, that the pool holds enough for the
// payout. Callers run this before committing the verified flag so the commit
// order never leaves a verified milestone with no funds moved.
func (e *Engine) CanCover(ctx context.Context, p Payout) error {
	pool, err := e.treasury.Pool(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read pooled balance")
	}
	if pool < p.Total() {
		return dErrors.New(dErrors.CodeInvalidState, "pooled balance cannot cover milestone payout")
	}
	return nil
}

// Release moves both legs of the payout. Either both transfers complete or
// the first failure is reported with nothing further moved; under the
// serialized ledger transaction with a prior CanCover, failure is not an
// expected outcome.
func (e *Engine) Release(ctx context.Context, p Payout) error {
	if err := e.treasury.Transfer(ctx, p.Researcher, p.Share); err != nil {
		return e.wrapTransferErr(err, "researcher share")
	}
	if err := e.treasury.Transfer(ctx, p.Recipient, p.Fee); err != nil {
		return e.wrapTransferErr(err, "platform fee")
	}

	e.logger.InfoContext(ctx, "milestone funds released",
		"researcher", p.Researcher.String(),
		"share", uint64(p.Share),
		"fee", uint64(p.Fee),
	)
	return nil
}

func (e *Engine) wrapTransferErr(err error, leg string) error {
	if errors.Is(err, sentinel.ErrInsufficientFunds) {
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "pooled balance cannot cover "+leg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer "+leg)
}
