package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fundledger/internal/milestone"
	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/httputil"
	"fundledger/pkg/requestcontext"
)

// Service defines the interface for milestone engine operations.
type Service interface {
	Create(ctx context.Context, projectID id.ProjectID, description string, amount id.Amount) (id.MilestoneID, error)
	Complete(ctx context.Context, milestoneID id.MilestoneID, evidence string) error
	Verify(ctx context.Context, milestoneID id.MilestoneID) error
	Get(ctx context.Context, milestoneID id.MilestoneID) (*milestone.Milestone, error)
	ListByProject(ctx context.Context, projectID id.ProjectID) ([]*milestone.Milestone, error)
}

// Handler wires milestone endpoints to the engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts milestone endpoints. Reads are public; creation,
// completion, and verification require an authenticated caller.
func (h *Handler) Register(public, protected chi.Router) {
	protected.Post("/projects/{projectID}/milestones", h.HandleCreate)
	protected.Post("/milestones/{milestoneID}/complete", h.HandleComplete)
	protected.Post("/milestones/{milestoneID}/verify", h.HandleVerify)
	public.Get("/projects/{projectID}/milestones", h.HandleList)
	public.Get("/milestones/{milestoneID}", h.HandleGet)
}

// CreateRequest is the HTTP request body for POST /projects/{projectID}/milestones.
type CreateRequest struct {
	Description string `json:"description"`
	Amount      uint64 `json:"amount"`
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "description is required")
	}
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}
	return nil
}

// CompleteRequest is the HTTP request body for POST /milestones/{milestoneID}/complete.
type CompleteRequest struct {
	Evidence string `json:"evidence"`
}

func (r *CompleteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Evidence = strings.TrimSpace(r.Evidence)
	if r.Evidence == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "evidence is required")
	}
	return nil
}

// MilestoneResponse is the JSON shape of a milestone.
type MilestoneResponse struct {
	ID          id.MilestoneID `json:"id"`
	ProjectID   id.ProjectID   `json:"project_id"`
	Description string         `json:"description"`
	Amount      id.Amount      `json:"amount"`
	Completed   bool           `json:"completed"`
	Verified    bool           `json:"verified"`
	Evidence    string         `json:"evidence,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func fromMilestone(m *milestone.Milestone) MilestoneResponse {
	resp := MilestoneResponse{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Description: m.Description,
		Amount:      m.Amount,
		Completed:   m.Completed,
		Verified:    m.Verified,
		Evidence:    m.Evidence,
		CreatedAt:   m.CreatedAt,
	}
	if m.Completed {
		at := m.CompletedAt
		resp.CompletedAt = &at
	}
	return resp
}

// HandleCreate handles POST /projects/{projectID}/milestones.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[*CreateRequest](w, r, h.logger)
	if !ok {
		return
	}

	milestoneID, err := h.service.Create(ctx, projectID, req.Description, id.Amount(req.Amount))
	if err != nil {
		h.logger.WarnContext(ctx, "milestone creation failed",
			"request_id", requestID,
			"project_id", projectID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]id.MilestoneID{"id": milestoneID})
}

// HandleComplete handles POST /milestones/{milestoneID}/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	milestoneID, err := id.ParseMilestoneID(chi.URLParam(r, "milestoneID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[*CompleteRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Complete(ctx, milestoneID, req.Evidence); err != nil {
		h.logger.WarnContext(ctx, "milestone completion failed",
			"request_id", requestID,
			"milestone_id", milestoneID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerify handles POST /milestones/{milestoneID}/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	milestoneID, err := id.ParseMilestoneID(chi.URLParam(r, "milestoneID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Verify(ctx, milestoneID); err != nil {
		h.logger.WarnContext(ctx, "milestone verification failed",
			"request_id", requestID,
			"milestone_id", milestoneID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet handles GET /milestones/{milestoneID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	milestoneID, err := id.ParseMilestoneID(chi.URLParam(r, "milestoneID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	m, err := h.service.Get(r.Context(), milestoneID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromMilestone(m))
}

// HandleList handles GET /projects/{projectID}/milestones.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ms, err := h.service.ListByProject(r.Context(), projectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := make([]MilestoneResponse, 0, len(ms))
	for _, m := range ms {
		resp = append(resp, fromMilestone(m))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]MilestoneResponse{"milestones": resp})
}
