package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PlansCreated        prometheus.Counter
	PlansDeactivated    prometheus.Counter
	BeneficiariesAdded  prometheus.Counter
	ClaimsRecorded      prometheus.Counter
	ClaimConflicts      prometheus.Counter
	ClaimsRejected      prometheus.Counter
	KycSubmitted        prometheus.Counter
	KycApproved         prometheus.Counter
	KycRejected         prometheus.Counter
	MigrationsApplied   prometheus.Counter
	ClaimCheckDurations prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PlansCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heirloom_plans_created_total",
			Help: "Total number of inheritance plans created",
		}),
		PlansDeactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heirloom_plans_deactivated_total",
			Help: "Total number of inheritance plans deactivated",
		}),
		BeneficiariesAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heirloom_beneficiaries_added_total",
			Help: "Total number of beneficiaries added to existing plans",
		}),
		ClaimsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heirloom_claims_recorded_total",
			Help: "Total number of successful claims",
		}),
		ClaimConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heirloom_claim_conflicts_total",
			Help: "Total number of claim attempts that lost the insert race or hit an existing claim",
		}),
		ClaimsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heirloom_claims_rejected_total",
			Help: "Total number of claim attempts rejected before insert",
		}),
		KycSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heirloom_kyc_submitted_total",
			Help: "Total number of KYC submissions",
		}),
		KycApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heirloom_kyc_approved_total",
			Help: "Total number of KYC approvals",
		}),
		KycRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heirloom_kyc_rejected_total",
			Help: "Total number of KYC rejections",
		}),
		MigrationsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "heirloom_migrations_applied_total",
			Help: "Total number of schema migrations applied",
		}),
		ClaimCheckDurations: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "heirloom_claim_check_duration_ms",
			Help:    "Latency of claim eligibility and credential checks in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
	}
}
