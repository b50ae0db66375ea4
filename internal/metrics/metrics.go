// Package metrics records batch evaluation metrics in a Prometheus registry
// that is written out as a node-exporter textfile.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	runsExtracted   *prometheus.CounterVec
	runsDropped     *prometheus.CounterVec
	tierPass        *prometheus.GaugeVec
	periodsScored   *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
// Runtime collectors are left out so the textfile does not clash with the
// exporter's own metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{Registry: reg}

	r.runsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splitgate_runs_extracted_total",
			Help: "Runs whose metrics were extracted, by metrics source",
		},
		[]string{"source"},
	)
	r.runsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splitgate_runs_dropped_total",
			Help: "Runs dropped before evaluation, by reason",
		},
		[]string{"reason"},
	)
	r.tierPass = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "splitgate_tier_pass",
			Help: "Acceptance tier outcome (1 pass, 0 fail)",
		},
		[]string{"policy", "tier"},
	)
	r.periodsScored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splitgate_periods_scored_total",
			Help: "Scored periods, by result",
		},
		[]string{"result"},
	)
	r.notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "splitgate_notifications_total",
			Help: "Verdict notifications, by notifier and status",
		},
		[]string{"notifier", "status"},
	)
	r.commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "splitgate_command_duration_seconds",
			Help:    "Command duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"command"},
	)

	reg.MustRegister(r.runsExtracted)
	reg.MustRegister(r.runsDropped)
	reg.MustRegister(r.tierPass)
	reg.MustRegister(r.periodsScored)
	reg.MustRegister(r.notifications)
	reg.MustRegister(r.commandDuration)

	return r
}

// RecordRunExtracted counts a run that produced metrics.
func (r *Registry) RecordRunExtracted(source string) {
	r.runsExtracted.WithLabelValues(source).Inc()
}

// RecordRunDropped counts a run dropped before evaluation.
func (r *Registry) RecordRunDropped(reason string) {
	r.runsDropped.WithLabelValues(reason).Inc()
}

// SetTierPass records the outcome of one acceptance tier.
func (r *Registry) SetTierPass(policy, tier string, pass bool) {
	v := 0.0
	if pass {
		v = 1
	}
	r.tierPass.WithLabelValues(policy, tier).Set(v)
}

// SetTiers records every tier of a policy.
func (r *Registry) SetTiers(policy string, tiers map[string]bool) {
	for tier, pass := range tiers {
		r.SetTierPass(policy, tier, pass)
	}
}

// RecordPeriod counts a scored period.
func (r *Registry) RecordPeriod(passed bool) {
	result := "fail"
	if passed {
		result = "pass"
	}
	r.periodsScored.WithLabelValues(result).Inc()
}

// RecordNotification counts a verdict notification.
func (r *Registry) RecordNotification(notifier string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	r.notifications.WithLabelValues(notifier, status).Inc()
}

// RecordCommand records the duration of a command.
func (r *Registry) RecordCommand(command string, duration float64) {
	r.commandDuration.WithLabelValues(command).Observe(duration)
}

// WriteTextfile writes the registry in the text exposition format. The file
// is written atomically and its directory created when missing.
func (r *Registry) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r.Registry)
}
