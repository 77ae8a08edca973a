package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed measurements and runs.
	OutcomeSuccess = "success"
	// OutcomeError labels failed measurements and runs.
	OutcomeError = "error"
)

const namespace = "ptf_search"

var (
	scenariosCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_created_total",
			Help:      "Scenarios queued by search strategies, partitioned by strategy.",
		},
		[]string{"strategy"},
	)

	measurementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_total",
			Help:      "Scenario measurements, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	measurementDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "measurement_seconds",
			Help:      "Scenario measurement latency in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	searchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed tuning runs, partitioned by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)

	searchIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_iterations",
			Help:      "Create/measure/finish iterations per tuning run.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000},
		},
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Open remote search sessions.",
		},
	)
)

// Register attaches the search collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		scenariosCreatedTotal,
		measurementsTotal,
		measurementDurationSeconds,
		searchRunsTotal,
		searchIterations,
		sessionsActive,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveScenariosCreated counts scenarios a strategy queued in one call.
func ObserveScenariosCreated(strategy string, n int) {
	if n <= 0 {
		return
	}
	scenariosCreatedTotal.WithLabelValues(strategy).Add(float64(n))
}

// ObserveMeasurement records one measurement duration and outcome label.
func ObserveMeasurement(duration time.Duration, outcome string) {
	measurementsTotal.WithLabelValues(normalizeOutcome(outcome)).Inc()
	if duration < 0 {
		duration = 0
	}
	measurementDurationSeconds.Observe(duration.Seconds())
}

// ObserveRun records the end of a tuning run.
func ObserveRun(strategy, outcome string, iterations int) {
	searchRunsTotal.WithLabelValues(strategy, normalizeOutcome(outcome)).Inc()
	searchIterations.Observe(float64(iterations))
}

// SessionOpened increments the open session gauge.
func SessionOpened() {
	sessionsActive.Inc()
}

// SessionClosed decrements the open session gauge.
func SessionClosed() {
	sessionsActive.Dec()
}

func normalizeOutcome(outcome string) string {
	if outcome != OutcomeError {
		return OutcomeSuccess
	}
	return outcome
}
