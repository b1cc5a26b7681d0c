// Package httpapi assembles the HTTP surface: middleware chain, public and
// authenticated route groups, and operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "fundledger/internal/admin/handler"
	milestonehandler "fundledger/internal/milestone/handler"
	"fundledger/internal/platform/metrics"
	"fundledger/internal/platform/middleware"
	projecthandler "fundledger/internal/project/handler"
	researcherhandler "fundledger/internal/researcher/handler"
	"fundledger/pkg/platform/httputil"
)

// Counter reports a running total for the stats endpoint.
type Counter interface {
	Total(ctx context.Context) uint64
}

// Deps carries everything the router needs wired in.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator

	Researchers *researcherhandler.Handler
	Projects    *projecthandler.Handler
	Milestones  *milestonehandler.Handler
	Admin       *adminhandler.Handler

	ProjectCount   Counter
	MilestoneCount Counter
}

// NewRouter wires all endpoints behind the shared middleware chain. Write
// operations sit behind bearer auth; reads and operational endpoints are
// public.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/stats", handleStats(d.ProjectCount, d.MilestoneCount))

	protected := r.With(middleware.RequireAuth(d.Validator, d.Logger))

	d.Researchers.Register(r, protected)
	d.Projects.Register(r, protected)
	d.Milestones.Register(r, protected)
	d.Admin.Register(protected)

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStats reports global counters. Because ids are allocated only after
// validation, each total equals the highest assigned id.
func handleStats(projects, milestones Counter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]uint64{
			"total_projects":   projects.Total(r.Context()),
			"total_milestones": milestones.Total(r.Context()),
		})
	}
}
