package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fundledger/internal/escrow"
	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/httputil"
	"fundledger/pkg/requestcontext"
)

// Service defines the interface for platform owner operations. The service
// itself enforces the owner check; the handler only shapes requests.
type Service interface {
	SetVerifier(ctx context.Context, principal id.Principal, trusted bool) error
	SetPlatformFee(ctx context.Context, bps uint32) error
	EmergencyWithdraw(ctx context.Context) (id.Amount, error)
}

// Handler wires owner endpoints to the admin service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts admin endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/verifiers", h.HandleSetVerifier)
	r.Post("/admin/fee", h.HandleSetFee)
	r.Post("/admin/emergency-withdraw", h.HandleEmergencyWithdraw)
}

// SetVerifierRequest is the HTTP request body for POST /admin/verifiers.
type SetVerifierRequest struct {
	Principal string `json:"principal"`
	Trusted   bool   `json:"trusted"`
}

func (r *SetVerifierRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Principal = strings.TrimSpace(r.Principal)
	if r.Principal == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "principal is required")
	}
	return nil
}

// SetFeeRequest is the HTTP request body for POST /admin/fee.
type SetFeeRequest struct {
	Bps uint32 `json:"bps"`
}

func (r *SetFeeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Bps > escrow.MaxFeeBps {
		return dErrors.New(dErrors.CodeLimitExceeded, "fee exceeds the platform maximum")
	}
	return nil
}

// HandleSetVerifier handles POST /admin/verifiers.
func (h *Handler) HandleSetVerifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[*SetVerifierRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.SetVerifier(ctx, id.Principal(req.Principal), req.Trusted); err != nil {
		h.logger.WarnContext(ctx, "verifier update failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetFee handles POST /admin/fee.
func (h *Handler) HandleSetFee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[*SetFeeRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.SetPlatformFee(ctx, req.Bps); err != nil {
		h.logger.WarnContext(ctx, "fee update failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEmergencyWithdraw handles POST /admin/emergency-withdraw.
func (h *Handler) HandleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	amount, err := h.service.EmergencyWithdraw(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "emergency withdraw failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "emergency withdraw executed",
		"request_id", requestcontext.RequestID(ctx),
		"amount", uint64(amount),
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]id.Amount{"withdrawn": amount})
}
