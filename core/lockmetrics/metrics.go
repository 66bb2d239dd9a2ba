// Package lockmetrics provides the Prometheus instrumentation injected
// into the lock strategies (C2), so those strategies never reach for the
// global registry themselves.
package lockmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels the result of an acquire attempt.
type Outcome string

const (
	OutcomeAcquired   Outcome = "acquired"
	OutcomeFailedOpen Outcome = "failed_open"
	OutcomeTimeout    Outcome = "timeout"
)

// Strategy labels which C2 implementation produced a measurement.
type Strategy string

const (
	StrategyLocal       Strategy = "local"
	StrategyDistributed Strategy = "distributed"
)

// Metrics bundles every lock-related Prometheus collector. Construct one
// with New and inject it into both lock strategies.
type Metrics struct {
	WaitSeconds *prometheus.HistogramVec
	HoldSeconds *prometheus.HistogramVec

	Waiting *prometheus.GaugeVec
	Active  *prometheus.GaugeVec

	Acquisitions    *prometheus.CounterVec
	TimeoutReleases prometheus.Counter
	ZombieCleanups  prometheus.Counter
	StoreErrors     *prometheus.CounterVec
}

var buckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// New constructs a Metrics bundle and registers its collectors against
// reg. Passing prometheus.NewRegistry() keeps metrics process-scoped and
// test-friendly; the HTTP server registers production instances against
// its own registry and exposes it at /metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WaitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lockgate",
			Subsystem: "lock",
			Name:      "wait_seconds",
			Help:      "Time a caller spent waiting to acquire a lock.",
			Buckets:   buckets,
		}, []string{"strategy"}),
		HoldSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lockgate",
			Subsystem: "lock",
			Name:      "hold_seconds",
			Help:      "Time a lock was held before release.",
			Buckets:   buckets,
		}, []string{"strategy"}),
		Waiting: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lockgate",
			Subsystem: "lock",
			Name:      "waiting_transactions",
			Help:      "Number of callers currently queued for a lock.",
		}, []string{"strategy"}),
		Active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lockgate",
			Subsystem: "lock",
			Name:      "active",
			Help:      "Number of locks currently held.",
		}, []string{"strategy"}),
		Acquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockgate",
			Subsystem: "lock",
			Name:      "acquisitions_total",
			Help:      "Acquire attempts by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		TimeoutReleases: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lockgate",
			Subsystem: "lock",
			Name:      "timeout_releases_total",
			Help:      "Locks reclaimed after exceeding MaxHold instead of being explicitly released.",
		}),
		ZombieCleanups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lockgate",
			Subsystem: "lock",
			Name:      "zombie_cleanups_total",
			Help:      "Queue entries removed because their heartbeat lapsed.",
		}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockgate",
			Subsystem: "lock",
			Name:      "store_errors_total",
			Help:      "KV store errors encountered by operation.",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.WaitSeconds,
		m.HoldSeconds,
		m.Waiting,
		m.Active,
		m.Acquisitions,
		m.TimeoutReleases,
		m.ZombieCleanups,
		m.StoreErrors,
	)

	return m
}

func (m *Metrics) RecordAcquisition(strategy Strategy, outcome Outcome) {
	m.Acquisitions.WithLabelValues(string(strategy), string(outcome)).Inc()
}

func (m *Metrics) RecordWait(strategy Strategy, seconds float64) {
	m.WaitSeconds.WithLabelValues(string(strategy)).Observe(seconds)
}

func (m *Metrics) RecordHold(strategy Strategy, seconds float64) {
	m.HoldSeconds.WithLabelValues(string(strategy)).Observe(seconds)
}

func (m *Metrics) SetWaiting(strategy Strategy, n float64) {
	m.Waiting.WithLabelValues(string(strategy)).Set(n)
}

func (m *Metrics) IncActive(strategy Strategy) {
	m.Active.WithLabelValues(string(strategy)).Inc()
}

func (m *Metrics) DecActive(strategy Strategy) {
	m.Active.WithLabelValues(string(strategy)).Dec()
}

func (m *Metrics) RecordTimeoutRelease() {
	m.TimeoutReleases.Inc()
}

func (m *Metrics) RecordZombieCleanup() {
	m.ZombieCleanups.Inc()
}

func (m *Metrics) RecordStoreError(operation string) {
	m.StoreErrors.WithLabelValues(operation).Inc()
}
