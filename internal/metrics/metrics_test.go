package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NotNil(t, reg)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, mfs, "vectors without observations are not exported")
}

func TestRegistry_Runs(t *testing.T) {
	reg := NewRegistry()

	reg.RecordRunExtracted("structured")
	reg.RecordRunExtracted("structured")
	reg.RecordRunExtracted("event_log")
	reg.RecordRunDropped("artifact_missing")

	assert.Equal(t, 2.0, value(t, reg, "splitgate_runs_extracted_total", map[string]string{"source": "structured"}))
	assert.Equal(t, 1.0, value(t, reg, "splitgate_runs_extracted_total", map[string]string{"source": "event_log"}))
	assert.Equal(t, 1.0, value(t, reg, "splitgate_runs_dropped_total", map[string]string{"reason": "artifact_missing"}))
}

func TestRegistry_Tiers(t *testing.T) {
	reg := NewRegistry()

	reg.SetTiers("splits", map[string]bool{"combined": true, "wfo_stability": false})

	assert.Equal(t, 1.0, value(t, reg, "splitgate_tier_pass", map[string]string{"policy": "splits", "tier": "combined"}))
	assert.Equal(t, 0.0, value(t, reg, "splitgate_tier_pass", map[string]string{"policy": "splits", "tier": "wfo_stability"}))

	reg.SetTierPass("splits", "wfo_stability", true)
	assert.Equal(t, 1.0, value(t, reg, "splitgate_tier_pass", map[string]string{"policy": "splits", "tier": "wfo_stability"}))
}

func TestRegistry_PeriodsAndNotifications(t *testing.T) {
	reg := NewRegistry()

	reg.RecordPeriod(true)
	reg.RecordPeriod(false)
	reg.RecordPeriod(false)
	reg.RecordNotification("webhook", nil)
	reg.RecordNotification("telegram", errors.New("boom"))

	assert.Equal(t, 1.0, value(t, reg, "splitgate_periods_scored_total", map[string]string{"result": "pass"}))
	assert.Equal(t, 2.0, value(t, reg, "splitgate_periods_scored_total", map[string]string{"result": "fail"}))
	assert.Equal(t, 1.0, value(t, reg, "splitgate_notifications_total", map[string]string{"notifier": "webhook", "status": "success"}))
	assert.Equal(t, 1.0, value(t, reg, "splitgate_notifications_total", map[string]string{"notifier": "telegram", "status": "failed"}))
}

func TestRegistry_WriteTextfile(t *testing.T) {
	reg := NewRegistry()
	reg.RecordRunExtracted("structured")
	reg.RecordCommand("aggregate", 0.25)

	path := filepath.Join(t.TempDir(), "splitgate.prom")
	require.NoError(t, reg.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `splitgate_runs_extracted_total{source="structured"} 1`))
	assert.True(t, strings.Contains(text, `splitgate_command_duration_seconds_count{command="aggregate"} 1`))
}

func value(t *testing.T, reg *Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}
