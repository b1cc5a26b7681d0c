package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fundledger/internal/project"
	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/httputil"
	"fundledger/pkg/requestcontext"
)

// Service defines the interface for project lifecycle operations.
type Service interface {
	Create(ctx context.Context, in project.CreateInput) (id.ProjectID, error)
	Fund(ctx context.Context, projectID id.ProjectID, amount id.Amount) error
	GetView(ctx context.Context, projectID id.ProjectID) (*project.View, error)
	Contributors(ctx context.Context, projectID id.ProjectID) ([]id.Principal, error)
	Contribution(ctx context.Context, projectID id.ProjectID, principal id.Principal) (id.Amount, error)
}

// Handler wires project endpoints to the lifecycle service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts project endpoints. Reads are public; creation and funding
// require an authenticated caller.
func (h *Handler) Register(public, protected chi.Router) {
	protected.Post("/projects", h.HandleCreate)
	protected.Post("/projects/{projectID}/fund", h.HandleFund)
	public.Get("/projects/{projectID}", h.HandleGet)
	public.Get("/projects/{projectID}/contributors", h.HandleContributors)
	public.Get("/projects/{projectID}/contributions/{principal}", h.HandleContribution)
}

// CreateRequest is the HTTP request body for POST /projects.
type CreateRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ResearchArea string   `json:"research_area"`
	Goal         uint64   `json:"goal"`
	DurationDays uint64   `json:"duration_days"`
	Milestones   []string `json:"milestones"`
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	if r.Goal == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "goal must be positive")
	}
	if r.DurationDays == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "duration_days must be positive")
	}
	return nil
}

// FundRequest is the HTTP request body for POST /projects/{projectID}/fund.
type FundRequest struct {
	Amount uint64 `json:"amount"`
}

func (r *FundRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}
	return nil
}

// HandleCreate handles POST /projects.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[*CreateRequest](w, r, h.logger)
	if !ok {
		return
	}

	projectID, err := h.service.Create(ctx, project.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		ResearchArea:   req.ResearchArea,
		Goal:           id.Amount(req.Goal),
		DurationDays:   req.DurationDays,
		MilestoneTexts: req.Milestones,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "project creation failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]id.ProjectID{"id": projectID})
}

// HandleFund handles POST /projects/{projectID}/fund.
func (h *Handler) HandleFund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[*FundRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Fund(ctx, projectID, id.Amount(req.Amount)); err != nil {
		h.logger.WarnContext(ctx, "contribution rejected",
			"request_id", requestID,
			"project_id", projectID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "contribution accepted",
		"request_id", requestID,
		"project_id", projectID.String(),
		"amount", req.Amount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet handles GET /projects/{projectID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.GetView(r.Context(), projectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleContributors handles GET /projects/{projectID}/contributors.
func (h *Handler) HandleContributors(w http.ResponseWriter, r *http.Request) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	contributors, err := h.service.Contributors(r.Context(), projectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]id.Principal{"contributors": contributors})
}

// HandleContribution handles GET /projects/{projectID}/contributions/{principal}.
func (h *Handler) HandleContribution(w http.ResponseWriter, r *http.Request) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	principal, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	amount, err := h.service.Contribution(r.Context(), projectID, principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]id.Amount{"amount": amount})
}
