package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the project lifecycle engine.
type Metrics struct {
	ProjectsCreated    prometheus.Counter
	Contributions      prometheus.Counter
	ContributionAmount prometheus.Counter
	GoalsReached       prometheus.Counter
	FundDuration       prometheus.Histogram
}

// New creates a Metrics instance with all project module metrics registered
// against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProjectsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_projects_created_total",
			Help: "Total number of projects created",
		}),
		Contributions: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_contributions_total",
			Help: "Total number of accepted contributions",
		}),
		ContributionAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_contribution_amount_total",
			Help: "Total contributed amount in base units",
		}),
		GoalsReached: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_funding_goals_reached_total",
			Help: "Total number of projects that reached their funding goal",
		}),
		FundDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundledger_fund_project_duration_seconds",
			Help:    "Duration of FundProject operations (money-moving critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveFund records the duration of a FundProject operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveFund(start time.Time) {
	m.FundDuration.Observe(time.Since(start).Seconds())
}
