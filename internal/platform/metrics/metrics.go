package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds every Prometheus collector of the pipeline. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	// Identity resolutions by status: resolved, cached, not_found, collision, error
	Resolutions *prometheus.CounterVec

	// Biography chunks by result: ok, failed
	BiographyChunks *prometheus.CounterVec

	// Jobs queued by channel and pass: global, team, admin
	JobsQueued *prometheus.CounterVec

	// Delivery attempts by channel and result: delivered, retry, failed_permanently
	Deliveries *prometheus.CounterVec

	OutboxSize prometheus.Gauge

	RunDuration *prometheus.HistogramVec // by result: ok, aborted, error

	LastSuccess prometheus.Gauge
}

// New creates the collectors on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fantamorto_identity_resolutions_total",
			Help: "Identity resolutions by status",
		}, []string{"status"}),

		BiographyChunks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fantamorto_biography_chunks_total",
			Help: "Biography fetch chunks by result",
		}, []string{"result"}),

		JobsQueued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fantamorto_notification_jobs_queued_total",
			Help: "Notification jobs enqueued by channel and pass",
		}, []string{"channel", "pass"}),

		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fantamorto_notification_deliveries_total",
			Help: "Delivery attempts by channel and result",
		}, []string{"channel", "result"}),

		OutboxSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "fantamorto_notification_outbox_jobs",
			Help: "Jobs left in the outbox after the last drain",
		}),

		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fantamorto_pipeline_run_duration_seconds",
			Help:    "Duration of a full pipeline run by result",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"result"}),

		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "fantamorto_pipeline_last_success_timestamp_seconds",
			Help: "Unix time of the last successful pipeline run",
		}),
	}
}

// IncrementResolution records one identity resolution.
func (m *Metrics) IncrementResolution(status string) {
	if m != nil {
		m.Resolutions.WithLabelValues(status).Inc()
	}
}

// IncrementBiographyChunk records one biography chunk.
func (m *Metrics) IncrementBiographyChunk(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.BiographyChunks.WithLabelValues(result).Inc()
}

// AddJobsQueued records n jobs enqueued on a channel by a pass.
func (m *Metrics) AddJobsQueued(channel, pass string, n int) {
	if m != nil && n > 0 {
		m.JobsQueued.WithLabelValues(channel, pass).Add(float64(n))
	}
}

// IncrementDelivery records one delivery attempt.
func (m *Metrics) IncrementDelivery(channel, result string) {
	if m != nil {
		m.Deliveries.WithLabelValues(channel, result).Inc()
	}
}

// SetOutboxSize records the outbox backlog.
func (m *Metrics) SetOutboxSize(n int) {
	if m != nil {
		m.OutboxSize.Set(float64(n))
	}
}

// ObserveRun records a run and, on success, its completion time.
func (m *Metrics) ObserveRun(result string, d time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.RunDuration.WithLabelValues(result).Observe(d.Seconds())
	if result == "ok" {
		m.LastSuccess.Set(float64(finished.Unix()))
	}
}

// Push sends the registry to a Pushgateway under job, grouped by instance.
func (m *Metrics) Push(ctx context.Context, url, job, instance string) error {
	if m == nil || url == "" {
		return nil
	}
	p := push.New(url, job).Gatherer(m.Registry)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
