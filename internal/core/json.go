package core

import (
	"encoding/json"
	"math"
)

// JSONFloat converts an optional float into a JSON-safe value.
// Infinities become "inf"/"-inf", NaN and nil become null.
func JSONFloat(v *float64) any {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	if math.IsInf(*v, 1) {
		return "inf"
	}
	if math.IsInf(*v, -1) {
		return "-inf"
	}
	return *v
}

// MarshalJSON encodes the record with non-finite metrics as strings.
func (r RunRecord) MarshalJSON() ([]byte, error) {
	type alias RunRecord
	return json.Marshal(struct {
		alias
		ProfitFactor     any `json:"profit_factor"`
		DrawdownPct      any `json:"drawdown_pct"`
		NetProfit        any `json:"net_profit"`
		PFDegradationPct any `json:"pf_degradation_from_best_is_pct,omitempty"`
	}{
		alias:            alias(r),
		ProfitFactor:     JSONFloat(r.ProfitFactor),
		DrawdownPct:      JSONFloat(r.DrawdownPct),
		NetProfit:        JSONFloat(r.NetProfit),
		PFDegradationPct: JSONFloat(r.PFDegradationPct),
	})
}
