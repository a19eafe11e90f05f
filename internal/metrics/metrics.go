// Package metrics counts pipeline activity with Prometheus collectors.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nibzard/prospector/internal/agents"
)

// Status label values for processed leads.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Recorder holds the pipeline collectors. It implements agents.LogWriter
// so it can be attached to agent runs. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	leads     *prometheus.CounterVec
	duration  prometheus.Histogram
	handoffs  *prometheus.CounterVec
	toolCalls *prometheus.CounterVec
	errors    *prometheus.CounterVec
}

// New creates a recorder registered on a fresh registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a recorder registered on registry.
func NewWithRegistry(registry *prometheus.Registry) *Recorder {
	r := &Recorder{
		registry: registry,
		leads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prospector_leads_processed_total",
				Help: "Leads processed, by outcome.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prospector_lead_duration_seconds",
				Help:    "Time to process one lead.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		handoffs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prospector_agent_handoffs_total",
				Help: "Handoffs between agents.",
			},
			[]string{"from", "to"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prospector_tool_calls_total",
				Help: "Tool calls made by agents.",
			},
			[]string{"tool"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prospector_agent_errors_total",
				Help: "Errors reported during agent runs.",
			},
			[]string{"agent"},
		),
	}
	registry.MustRegister(r.leads, r.duration, r.handoffs, r.toolCalls, r.errors)
	return r
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Write records an agent run event.
func (r *Recorder) Write(event agents.LogEvent) error {
	if r == nil {
		return nil
	}
	switch event.Type {
	case agents.EventHandoff:
		r.handoffs.WithLabelValues(event.Agent, event.Target).Inc()
	case agents.EventTool:
		r.toolCalls.WithLabelValues(event.Tool).Inc()
	case agents.EventError:
		r.errors.WithLabelValues(event.Agent).Inc()
	case agents.EventLeadDone:
		status := event.Status
		if status == "" {
			status = StatusOK
		}
		r.leads.WithLabelValues(status).Inc()
		r.duration.Observe(event.Duration.Seconds())
	}
	return nil
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
