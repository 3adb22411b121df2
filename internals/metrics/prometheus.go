package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kampusku_job_runs_total",
			Help: "Scheduled job executions by outcome",
		},
		[]string{"job", "status"},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kampusku_job_duration_seconds",
			Help:    "Scheduled job execution time in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"job"},
	)

	RiskScoresComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kampusku_risk_scores_computed_total",
			Help: "Risk scores persisted by resulting level",
		},
		[]string{"level"},
	)

	RiskCalculationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kampusku_risk_calculation_failures_total",
			Help: "Per-student risk calculation failures",
		},
	)

	AlertsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kampusku_risk_alerts_created_total",
			Help: "Risk alerts created by type and level",
		},
		[]string{"type", "level"},
	)

	AlertsSuppressed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kampusku_risk_alerts_suppressed_total",
			Help: "Risk alerts skipped because one of the same type exists in the window",
		},
		[]string{"type"},
	)

	NotificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kampusku_notifications_dispatched_total",
			Help: "Stakeholder notifications by outcome",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		JobRunsTotal,
		JobDuration,
		RiskScoresComputed,
		RiskCalculationFailures,
		AlertsCreated,
		AlertsSuppressed,
		NotificationsDispatched,
	)
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
