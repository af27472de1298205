package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	Admissions      = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "drguard_admissions_total", Help: "Job requests by operation & outcome (accepted, denied)"}, []string{"operation", "outcome"})
	Dispatches      = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "drguard_dispatches_total", Help: "Job submissions to the queue by result (queued, held, error)"}, []string{"result"})
	Executions      = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "drguard_executions_total", Help: "Job executions by operation & outcome"}, []string{"operation", "outcome"})
	Reclaimed       = prometheus.NewCounter(prometheus.CounterOpts{Name: "drguard_jobs_reclaimed_total", Help: "RUNNING jobs failed for exceeding the max runtime"})
	Requeued        = prometheus.NewCounter(prometheus.CounterOpts{Name: "drguard_jobs_requeued_total", Help: "Stale PENDING jobs resubmitted to the queue"})
	EventFailures   = prometheus.NewCounter(prometheus.CounterOpts{Name: "drguard_event_publish_failures_total", Help: "Job events we failed to publish"})
	InFlightGauge   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "drguard_executions_inflight", Help: "Executions currently running in this process"})
	QueueDepthGauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "drguard_queue_depth", Help: "Jobs waiting in the queue"})
)

// Register adds our collectors to the default registry. Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			Admissions,
			Dispatches,
			Executions,
			Reclaimed,
			Requeued,
			EventFailures,
			InFlightGauge,
			QueueDepthGauge,
		)
	})
}

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
