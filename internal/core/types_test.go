package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestRunRecord_HasMetrics(t *testing.T) {
	assert.True(t, RunRecord{Source: SourceStructured}.HasMetrics())
	assert.True(t, RunRecord{Source: SourceEventLog}.HasMetrics())
	assert.False(t, RunRecord{Source: SourceNone}.HasMetrics())
	assert.False(t, RunRecord{}.HasMetrics())
}

func TestRunRecord_WithDegradationCopies(t *testing.T) {
	orig := RunRecord{Label: "stress_1"}
	got := orig.WithDegradation(f(12.5))

	require.NotNil(t, got.PFDegradationPct)
	assert.Equal(t, 12.5, *got.PFDegradationPct)
	assert.Nil(t, orig.PFDegradationPct)
}

func TestRunID_Deterministic(t *testing.T) {
	a := RunID("fold1", "wfo", "runs/fold1/run_metadata.json")
	b := RunID("fold1", "wfo", "runs/fold1/run_metadata.json")
	c := RunID("fold2", "wfo", "runs/fold2/run_metadata.json")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestJSONFloat(t *testing.T) {
	assert.Nil(t, JSONFloat(nil))
	assert.Nil(t, JSONFloat(f(math.NaN())))
	assert.Equal(t, "inf", JSONFloat(f(math.Inf(1))))
	assert.Equal(t, "-inf", JSONFloat(f(math.Inf(-1))))
	assert.Equal(t, 1.5, JSONFloat(f(1.5)))
}

func TestRunRecord_MarshalJSON(t *testing.T) {
	trades := 12
	rec := NewRunRecord("combined_full", "is", SplitCombined, SourceEventLog, Metrics{
		ProfitFactor: f(math.Inf(1)),
		DrawdownPct:  f(3.25),
		Trades:       &trades,
	})

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "inf", decoded["profit_factor"])
	assert.Equal(t, 3.25, decoded["drawdown_pct"])
	assert.Equal(t, float64(12), decoded["trades"])
	assert.Nil(t, decoded["net_profit"])
	assert.Equal(t, "combined", decoded["split_class"])
	assert.Equal(t, "event_log", decoded["metrics_source"])
	_, hasDegradation := decoded["pf_degradation_from_best_is_pct"]
	assert.False(t, hasDegradation)
}
