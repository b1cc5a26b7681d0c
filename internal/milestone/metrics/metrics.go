package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the milestone engine and payouts.
type Metrics struct {
	MilestonesCreated   prometheus.Counter
	MilestonesCompleted prometheus.Counter
	MilestonesVerified  prometheus.Counter
	PayoutAmount        prometheus.Counter
	PlatformFeeAmount   prometheus.Counter
	VerifyDuration      prometheus.Histogram
}

// New creates a Metrics instance with all milestone module metrics
// registered against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MilestonesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_milestones_created_total",
			Help: "Total number of milestones created",
		}),
		MilestonesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_milestones_completed_total",
			Help: "Total number of milestones completed with evidence",
		}),
		MilestonesVerified: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_milestones_verified_total",
			Help: "Total number of verified milestones (each is exactly one payout)",
		}),
		PayoutAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_payout_amount_total",
			Help: "Total researcher share paid out, in base units",
		}),
		PlatformFeeAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundledger_platform_fee_amount_total",
			Help: "Total platform fee collected, in base units",
		}),
		VerifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundledger_verify_milestone_duration_seconds",
			Help:    "Duration of VerifyMilestone operations (money-moving critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveVerify records the duration of a VerifyMilestone operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveVerify(start time.Time) {
	m.VerifyDuration.Observe(time.Since(start).Seconds())
}
