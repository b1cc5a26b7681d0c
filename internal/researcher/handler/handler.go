package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fundledger/internal/researcher"
	id "fundledger/pkg/domain"
	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/platform/httputil"
	"fundledger/pkg/requestcontext"
)

// Service defines the interface for researcher registry operations.
type Service interface {
	Register(ctx context.Context, name, institution string, expertise []string) (*researcher.Researcher, error)
	Get(ctx context.Context, principal id.Principal) (*researcher.Researcher, error)
}

// Handler wires researcher endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts researcher endpoints. Reads are public; registration
// requires an authenticated caller.
func (h *Handler) Register(public, protected chi.Router) {
	protected.Post("/researchers", h.HandleRegister)
	public.Get("/researchers/{principal}", h.HandleGet)
}

// RegisterRequest is the HTTP request body for POST /researchers.
type RegisterRequest struct {
	Name        string   `json:"name"`
	Institution string   `json:"institution"`
	Expertise   []string `json:"expertise"`
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Institution = strings.TrimSpace(r.Institution)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if r.Institution == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "institution is required")
	}
	return nil
}

// ResearcherResponse is the JSON shape of a registry entry.
type ResearcherResponse struct {
	Principal    id.Principal   `json:"principal"`
	Name         string         `json:"name"`
	Institution  string         `json:"institution"`
	Expertise    []string       `json:"expertise"`
	Reputation   uint64         `json:"reputation"`
	Verified     bool           `json:"verified"`
	Projects     []id.ProjectID `json:"projects"`
	RegisteredAt time.Time      `json:"registered_at"`
}

func fromResearcher(r *researcher.Researcher) ResearcherResponse {
	return ResearcherResponse{
		Principal:    r.Principal,
		Name:         r.Name,
		Institution:  r.Institution,
		Expertise:    r.Expertise,
		Reputation:   r.Reputation,
		Verified:     r.Verified,
		Projects:     r.Projects,
		RegisteredAt: r.RegisteredAt,
	}
}

// HandleRegister handles POST /researchers.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[*RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	entry, err := h.service.Register(ctx, req.Name, req.Institution, req.Expertise)
	if err != nil {
		h.logger.WarnContext(ctx, "researcher registration failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, fromResearcher(entry))
}

// HandleGet handles GET /researchers/{principal}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entry, err := h.service.Get(r.Context(), principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromResearcher(entry))
}
