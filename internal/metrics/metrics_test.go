package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second Register must tolerate existing collectors: %v", err)
	}
}

func TestObserveScenariosCreated(t *testing.T) {
	before := testutil.ToFloat64(scenariosCreatedTotal.WithLabelValues("exhaustive"))
	ObserveScenariosCreated("exhaustive", 4)
	ObserveScenariosCreated("exhaustive", 0)
	if got := testutil.ToFloat64(scenariosCreatedTotal.WithLabelValues("exhaustive")) - before; got != 4 {
		t.Fatalf("expected 4 new scenarios, got %v", got)
	}
}

func TestObserveMeasurementOutcome(t *testing.T) {
	success := testutil.ToFloat64(measurementsTotal.WithLabelValues(OutcomeSuccess))
	failure := testutil.ToFloat64(measurementsTotal.WithLabelValues(OutcomeError))

	ObserveMeasurement(10*time.Millisecond, "whatever")
	ObserveMeasurement(-time.Second, OutcomeError)

	if got := testutil.ToFloat64(measurementsTotal.WithLabelValues(OutcomeSuccess)) - success; got != 1 {
		t.Fatalf("unknown outcomes must count as success, got %v", got)
	}
	if got := testutil.ToFloat64(measurementsTotal.WithLabelValues(OutcomeError)) - failure; got != 1 {
		t.Fatalf("expected one failed measurement, got %v", got)
	}
}

func TestSessionGauge(t *testing.T) {
	before := testutil.ToFloat64(sessionsActive)
	SessionOpened()
	SessionOpened()
	SessionClosed()
	if got := testutil.ToFloat64(sessionsActive) - before; got != 1 {
		t.Fatalf("expected one open session, got %v", got)
	}
}

func TestObserveRun(t *testing.T) {
	before := testutil.ToFloat64(searchRunsTotal.WithLabelValues("gde3", OutcomeSuccess))
	ObserveRun("gde3", OutcomeSuccess, 12)
	if got := testutil.ToFloat64(searchRunsTotal.WithLabelValues("gde3", OutcomeSuccess)) - before; got != 1 {
		t.Fatalf("expected one run, got %v", got)
	}
	if n := testutil.CollectAndCount(searchIterations); n != 1 {
		t.Fatalf("expected one iteration histogram, got %d", n)
	}
}
