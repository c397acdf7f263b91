package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ContainerStartsTotal counts every scheduling outcome by label:
	// warm, prewarmed, cold, or recreated (a start that first had to
	// evict a victim, whether it then promoted a prewarm container or
	// created a cold one).
	ContainerStartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoker_container_starts_total",
			Help: "Total number of container starts by outcome",
		},
		[]string{"outcome"},
	)

	PoolSaturatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invoker_pool_saturated_total",
			Help: "Total number of runs that found the pool at capacity",
		},
	)

	PoolOccupancy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "invoker_pool_occupancy",
			Help: "Current number of workers by pool state",
		},
		[]string{"state"},
	)

	ContainerStartDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invoker_container_start_duration_seconds",
			Help:    "Time taken to create and ready a container in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ActivationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invoker_activation_duration_seconds",
			Help:    "Time taken to execute one activation against a warm container",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(ContainerStartsTotal)
	prometheus.MustRegister(PoolSaturatedTotal)
	prometheus.MustRegister(PoolOccupancy)
	prometheus.MustRegister(ContainerStartDuration)
	prometheus.MustRegister(ActivationDuration)
}

// ContainerStart records one scheduling outcome (warm, prewarmed, cold,
// or recreated).
func ContainerStart(outcome string) {
	ContainerStartsTotal.WithLabelValues(outcome).Inc()
}

// PoolSaturated records a run that arrived with the pool already at
// capacity.
func PoolSaturated() {
	PoolSaturatedTotal.Inc()
}

// SetOccupancy reports the pool's current free/busy/prewarmed counts.
func SetOccupancy(free, busy, prewarmed int) {
	PoolOccupancy.WithLabelValues("free").Set(float64(free))
	PoolOccupancy.WithLabelValues("busy").Set(float64(busy))
	PoolOccupancy.WithLabelValues("prewarmed").Set(float64(prewarmed))
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
