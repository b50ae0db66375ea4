package gate

import (
	"encoding/json"
	"math"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/numeric"
)

// Tier names of the walk-forward policy.
const (
	TierIS      = "is"
	TierOOS     = "oos"
	TierHoldout = "holdout"
	TierStress  = "stress"
)

// WalkForwardThresholds are the limits of the is/oos/holdout/stress policy.
type WalkForwardThresholds struct {
	ISPFMin               float64 `mapstructure:"is_pf_min" json:"is_pf_min" validate:"gte=0"`
	OOSPFMedianMin        float64 `mapstructure:"oos_pf_median_min" json:"oos_pf_median_min" validate:"gte=0"`
	OOSPFFoldMin          float64 `mapstructure:"oos_pf_fold_min" json:"oos_pf_fold_min" validate:"gte=0"`
	HoldoutPFMin          float64 `mapstructure:"holdout_pf_min" json:"holdout_pf_min" validate:"gte=0"`
	MaxDDPct              float64 `mapstructure:"max_dd_pct" json:"max_dd_pct" validate:"gte=0"`
	MinTrades             int     `mapstructure:"min_trades" json:"min_trades" validate:"gte=0"`
	StressPFDegradeMaxPct float64 `mapstructure:"stress_pf_degrade_max_pct" json:"stress_pf_degrade_max_pct" validate:"gte=0"`
}

// DefaultWalkForwardThresholds returns the production limits.
func DefaultWalkForwardThresholds() WalkForwardThresholds {
	return WalkForwardThresholds{
		ISPFMin:               2.5,
		OOSPFMedianMin:        1.6,
		OOSPFFoldMin:          1.2,
		HoldoutPFMin:          1.4,
		MaxDDPct:              15.0,
		MinTrades:             300,
		StressPFDegradeMaxPct: 25.0,
	}
}

// ApplyStressDegradation returns copies of the records with the profit factor
// degradation relative to the best in-sample profit factor attached. Records
// are returned unchanged when no positive in-sample profit factor exists.
func ApplyStressDegradation(records []core.RunRecord) []core.RunRecord {
	out := append([]core.RunRecord(nil), records...)

	bestIS := math.Inf(-1)
	for _, r := range out {
		if r.SplitClass == core.SplitIS && r.ProfitFactor != nil && *r.ProfitFactor > bestIS {
			bestIS = *r.ProfitFactor
		}
	}
	if bestIS <= 0 {
		return out
	}

	for i, r := range out {
		if r.ProfitFactor == nil {
			continue
		}
		degrade := (bestIS - *r.ProfitFactor) / bestIS * 100
		out[i] = r.WithDegradation(&degrade)
	}
	return out
}

func profitFactors(records []core.RunRecord) ([]float64, bool) {
	pfs := make([]float64, 0, len(records))
	for _, r := range records {
		if r.ProfitFactor == nil {
			return nil, false
		}
		pfs = append(pfs, *r.ProfitFactor)
	}
	return pfs, len(pfs) > 0
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// WalkForwardPolicy builds the is/oos/holdout/stress policy. Stress records
// are expected to carry degradation figures from ApplyStressDegradation.
func WalkForwardPolicy(th WalkForwardThresholds) Policy {
	return Policy{
		Name: "walk_forward",
		Tiers: []Tier{
			{
				Name:       TierIS,
				Split:      core.SplitIS,
				Quantifier: Every,
				Member: func(r core.RunRecord) bool {
					if r.ProfitFactor == nil || r.DrawdownPct == nil || r.Trades == nil {
						return false
					}
					return *r.ProfitFactor > th.ISPFMin &&
						*r.DrawdownPct <= th.MaxDDPct &&
						*r.Trades >= th.MinTrades
				},
			},
			{
				Name:       TierOOS,
				Split:      core.SplitOOS,
				Quantifier: Every,
				Member: func(r core.RunRecord) bool {
					return has(r.ProfitFactor) && absentOrAtMost(r.DrawdownPct, th.MaxDDPct)
				},
				Check: func(members []core.RunRecord) bool {
					pfs, ok := profitFactors(members)
					if !ok {
						return false
					}
					median, _ := numeric.Median(pfs)
					return median >= th.OOSPFMedianMin && minOf(pfs) >= th.OOSPFFoldMin
				},
			},
			{
				Name:       TierHoldout,
				Split:      core.SplitHoldout,
				Quantifier: Every,
				Member: func(r core.RunRecord) bool {
					return r.ProfitFactor != nil && *r.ProfitFactor >= th.HoldoutPFMin &&
						absentOrAtMost(r.DrawdownPct, th.MaxDDPct)
				},
			},
			{
				Name:       TierStress,
				Split:      core.SplitStress,
				Quantifier: Every,
				Empty:      EmptyNotApplicable,
				Member: func(r core.RunRecord) bool {
					if r.NetProfit != nil && *r.NetProfit <= 0 {
						return false
					}
					return r.PFDegradationPct == nil || !(*r.PFDegradationPct > th.StressPFDegradeMaxPct)
				},
			},
		},
	}
}

// WalkForwardAcceptance is the verdict of the walk-forward policy.
type WalkForwardAcceptance struct {
	ISPass      bool
	OOSPass     bool
	HoldoutPass bool
	// nil when there are no stress reports
	StressPass  *bool
	OOSMedianPF *float64
	OOSMinPF    *float64
	Counts      map[string]int
	OverallPass bool
	Tiers       []TierResult
}

// EvaluateWalkForward applies the walk-forward policy.
func EvaluateWalkForward(records []core.RunRecord, th WalkForwardThresholds) WalkForwardAcceptance {
	res := WalkForwardPolicy(th).Evaluate(records)
	is, _ := res.Tier(TierIS)
	oos, _ := res.Tier(TierOOS)
	holdout, _ := res.Tier(TierHoldout)
	stress, _ := res.Tier(TierStress)

	total := 0
	for _, g := range res.Groups {
		total += len(g)
	}

	acc := WalkForwardAcceptance{
		ISPass:      is.Pass,
		OOSPass:     oos.Pass,
		HoldoutPass: holdout.Pass,
		Counts: map[string]int{
			string(core.SplitIS):      len(res.Groups[core.SplitIS]),
			string(core.SplitOOS):     len(res.Groups[core.SplitOOS]),
			string(core.SplitHoldout): len(res.Groups[core.SplitHoldout]),
			string(core.SplitStress):  len(res.Groups[core.SplitStress]),
			"total":                   total,
		},
		OverallPass: res.Pass,
		Tiers:       res.Tiers,
	}
	if stress.Applicable {
		pass := stress.Pass
		acc.StressPass = &pass
	}
	if pfs, ok := profitFactors(res.Groups[core.SplitOOS]); ok {
		median, _ := numeric.Median(pfs)
		low := minOf(pfs)
		acc.OOSMedianPF = &median
		acc.OOSMinPF = &low
	}
	return acc
}

// PassMap returns the tier flags for notification. A stress tier that does
// not apply is reported as passing.
func (a WalkForwardAcceptance) PassMap() map[string]bool {
	return map[string]bool{
		TierIS:      a.ISPass,
		TierOOS:     a.OOSPass,
		TierHoldout: a.HoldoutPass,
		TierStress:  a.StressPass == nil || *a.StressPass,
	}
}

// MarshalJSON encodes infinite profit factors as "inf".
func (a WalkForwardAcceptance) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ISPass      bool           `json:"is_pass"`
		OOSPass     bool           `json:"oos_pass"`
		HoldoutPass bool           `json:"holdout_pass"`
		StressPass  *bool          `json:"stress_pass"`
		OOSMedianPF any            `json:"oos_median_pf"`
		OOSMinPF    any            `json:"oos_min_pf"`
		Counts      map[string]int `json:"counts"`
		OverallPass bool           `json:"overall_pass"`
		Tiers       []TierResult   `json:"tiers"`
	}{
		ISPass:      a.ISPass,
		OOSPass:     a.OOSPass,
		HoldoutPass: a.HoldoutPass,
		StressPass:  a.StressPass,
		OOSMedianPF: core.JSONFloat(a.OOSMedianPF),
		OOSMinPF:    core.JSONFloat(a.OOSMinPF),
		Counts:      a.Counts,
		OverallPass: a.OverallPass,
		Tiers:       a.Tiers,
	})
}
