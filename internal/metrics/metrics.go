// Package metrics holds the prometheus collectors of the form service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service collectors. Each instance registers on its own
// registerer so tests can build one per case.
type Metrics struct {
	FormsRendered    *prometheus.CounterVec
	RenderFailures   *prometheus.CounterVec
	RenderDuration   *prometheus.HistogramVec
	AttachmentOps    *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	ValidationIssues prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FormsRendered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "applyform_forms_rendered_total",
				Help: "Total number of forms rendered",
			},
			[]string{"mode"},
		),
		RenderFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "applyform_render_failures_total",
				Help: "Total number of form renders that failed",
			},
			[]string{"reason"},
		),
		RenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "applyform_render_duration_seconds",
				Help:    "Duration of the form pipeline in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		AttachmentOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "applyform_attachment_operations_total",
				Help: "Attachment uploads and deletes by outcome",
			},
			[]string{"operation", "outcome"},
		),
		UpstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "applyform_upstream_request_duration_seconds",
				Help:    "Latency of grants API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "status"},
		),
		ValidationIssues: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "applyform_validation_warnings_total",
				Help: "Validation warnings returned for saved forms",
			},
		),
	}
}

// ObserveAttachment counts one attachment operation. It satisfies the
// attachments observer contract.
func (m *Metrics) ObserveAttachment(operation, outcome string) {
	m.AttachmentOps.WithLabelValues(operation, outcome).Inc()
}

// ObserveUpstream records one grants API request. Status 0 means the
// request never got a response.
func (m *Metrics) ObserveUpstream(operation string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.UpstreamLatency.WithLabelValues(operation, label).Observe(elapsed.Seconds())
}

// ObserveRender records one pipeline run. reason is empty on success.
func (m *Metrics) ObserveRender(mode, reason string, elapsed time.Duration) {
	m.RenderDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	if reason != "" {
		m.RenderFailures.WithLabelValues(reason).Inc()
		return
	}
	m.FormsRendered.WithLabelValues(mode).Inc()
}
