// Package metrics holds the Prometheus collectors exported on /metrics.
//
// All collectors are registered against the default registry at package
// init. HTTP metrics are labelled by chi route pattern, never the raw URL.
package metrics

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sbilibin2017/gw-newsletter/internal/logger"
)

// HTTP metrics, labelled by method, route pattern and status code.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route pattern.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Idempotency outcomes.
const (
	OutcomeStarted   = "started"
	OutcomeReplayed  = "replayed"
	OutcomeWaited    = "waited"
	OutcomeTimeout   = "timeout"
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
)

// IdempotencyOutcomesTotal counts claim attempts by outcome. A growing
// "waited" or "timeout" series means clients retry while the first
// submission is still running.
var IdempotencyOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "idempotency_outcomes_total",
		Help: "Total number of idempotent operations, by outcome.",
	},
	[]string{"outcome"},
)

// LoginAttemptsTotal counts credential checks by result (success, invalid, error).
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Total number of credential validations, by result.",
	},
	[]string{"result"},
)

// EmailsSentTotal counts outgoing emails by kind (newsletter, confirmation) and result.
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "emails_sent_total",
		Help: "Total number of emails handed to the mail transport, by kind and result.",
	},
	[]string{"kind", "result"},
)

// NewslettersPublishedTotal counts issues dispatched to every confirmed subscriber.
var NewslettersPublishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "newsletters_published_total",
		Help: "Total number of newsletter issues published.",
	},
)

// DBOpenConnections tracks the pool's open connections.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector samples pool statistics every interval until the
// database stops answering pings.
func StartDBStatsCollector(db *sqlx.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				logger.Log.Warnw("db stats collector stopped", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
