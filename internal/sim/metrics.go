package sim

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mimac-sim/internal/mac"
)

// Metrics exposes simulation outcomes to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	runs      *prometheus.CounterVec
	attempts  *prometheus.CounterVec
	bytes     *prometheus.CounterVec
	energy    *prometheus.GaugeVec
	collision *prometheus.GaugeVec
	duration  prometheus.Histogram
}

// NewMetrics registers the simulator collectors with reg, or with the
// default registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mimac_runs_total",
			Help: "Completed simulation runs per coil configuration.",
		}, []string{"profile"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mimac_attempts_total",
			Help: "Processed transmission attempts by outcome.",
		}, []string{"profile", "outcome"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mimac_bytes_total",
			Help: "Bytes put on the air and delivered.",
		}, []string{"profile", "kind"}),
		energy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mimac_last_energy_joules",
			Help: "Network energy of the most recent run.",
		}, []string{"profile"}),
		collision: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mimac_last_collision_ratio",
			Help: "Collided share of processed attempts in the most recent run.",
		}, []string{"profile"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mimac_run_duration_seconds",
			Help:    "Wall time spent simulating one profile.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
	}
	reg.MustRegister(m.runs, m.attempts, m.bytes, m.energy, m.collision, m.duration)
	return m
}

// Observe records one finished run.
func (m *Metrics) Observe(res mac.Result, elapsed time.Duration) {
	if m == nil {
		return
	}
	p := string(res.Profile)
	m.runs.WithLabelValues(p).Inc()
	m.attempts.WithLabelValues(p, "collided").Add(float64(res.Collided))
	m.attempts.WithLabelValues(p, "completed").Add(float64(res.Completed))
	m.bytes.WithLabelValues(p, "sent").Add(float64(res.BytesSent))
	m.bytes.WithLabelValues(p, "delivered").Add(float64(res.BytesDelivered))
	m.energy.WithLabelValues(p).Set(res.EnergyJ)
	ratio := 0.0
	if res.AttemptsProcessed > 0 {
		ratio = float64(res.Collided) / float64(res.AttemptsProcessed)
	}
	m.collision.WithLabelValues(p).Set(ratio)
	m.duration.Observe(elapsed.Seconds())
}
