package sim

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mimac-sim/internal/mac"
)

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	res := mac.Result{
		Profile:           mac.Hybrid,
		AttemptsProcessed: 4,
		Collided:          1,
		Completed:         3,
		BytesSent:         151,
		BytesDelivered:    72,
		EnergyJ:           0.02,
	}
	m.Observe(res, 5*time.Millisecond)
	m.Observe(res, 5*time.Millisecond)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("hybrid")); got != 2 {
		t.Fatalf("expected runs 2, got %f", got)
	}
	if got := testutil.ToFloat64(m.attempts.WithLabelValues("hybrid", "collided")); got != 2 {
		t.Fatalf("expected collided 2, got %f", got)
	}
	if got := testutil.ToFloat64(m.bytes.WithLabelValues("hybrid", "delivered")); got != 144 {
		t.Fatalf("expected delivered 144, got %f", got)
	}
	if got := testutil.ToFloat64(m.energy.WithLabelValues("hybrid")); got != 0.02 {
		t.Fatalf("expected energy gauge 0.02, got %f", got)
	}
	if got := testutil.ToFloat64(m.collision.WithLabelValues("hybrid")); got != 0.25 {
		t.Fatalf("expected collision ratio 0.25, got %f", got)
	}
	if samples := testutil.CollectAndCount(m.duration); samples != 1 {
		t.Fatalf("expected duration histogram to report 1 series, got %d", samples)
	}
}

func TestMetricsDefaultRegisterer(t *testing.T) {
	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	m := NewMetrics(nil)
	m.Observe(mac.Result{Profile: mac.Sequential}, time.Millisecond)
	if n, err := testutil.GatherAndCount(reg, "mimac_runs_total"); err != nil || n != 1 {
		t.Fatalf("expected one runs series, got %d (%v)", n, err)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Observe(mac.Result{}, time.Second)
}
