package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registerer is the subset of prometheus.Registerer we need.
type Registerer = prometheus.Registerer

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	CodesGeneratedTotal     prometheus.Counter
	GenerateCollisionsTotal prometheus.Counter
	ClaimsTotal             *prometheus.CounterVec
	ClaimDuration           prometheus.Histogram
	TokenVerificationsTotal *prometheus.CounterVec
	CodesPurgedTotal        prometheus.Counter
	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
}

// New registers every collector on reg. Passing a fresh prometheus.Registry
// keeps tests independent of the global default registry.
func New(reg Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		CodesGeneratedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "codegate_codes_generated_total",
			Help: "Total number of access codes written to the store",
		}),
		GenerateCollisionsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "codegate_generate_collisions_total",
			Help: "Draws that hit an existing code and were retried",
		}),
		ClaimsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "codegate_claims_total",
			Help: "Code redemption attempts by outcome",
		}, []string{"result"}),
		ClaimDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "codegate_claim_duration_seconds",
			Help:    "Time spent redeeming a code, including token minting",
			Buckets: prometheus.DefBuckets,
		}),
		TokenVerificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "codegate_token_verifications_total",
			Help: "Session token verifications by outcome",
		}, []string{"result"}),
		CodesPurgedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "codegate_codes_purged_total",
			Help: "Claimed codes deleted by housekeeping after their retention window",
		}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "codegate_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codegate_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) CodesGenerated(n int) { m.CodesGeneratedTotal.Add(float64(n)) }

func (m *Metrics) GenerateCollision() { m.GenerateCollisionsTotal.Inc() }

func (m *Metrics) ClaimResult(result string, d time.Duration) {
	m.ClaimsTotal.WithLabelValues(result).Inc()
	m.ClaimDuration.Observe(d.Seconds())
}

func (m *Metrics) TokenVerification(result string) {
	m.TokenVerificationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) CodesPurged(n int64) { m.CodesPurgedTotal.Add(float64(n)) }
