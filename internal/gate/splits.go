package gate

import (
	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/numeric"
)

// Tier names of the split-run policy.
const (
	TierCombined     = "combined"
	TierRegimeOOS    = "regime_oos"
	TierWFOStability = "wfo_stability"
)

// SplitThresholds are the limits of the combined/regime/walk-forward policy.
type SplitThresholds struct {
	CombinedPFMin     float64 `mapstructure:"combined_pf_min" json:"combined_pf_min" validate:"gte=0"`
	CombinedDDMax     float64 `mapstructure:"combined_dd_max" json:"combined_dd_max" validate:"gte=0"`
	CombinedTradesMin int     `mapstructure:"combined_trades_min" json:"combined_trades_min" validate:"gte=0"`
	RegimePFMin       float64 `mapstructure:"regime_pf_min" json:"regime_pf_min" validate:"gte=0"`
	RegimeDDMax       float64 `mapstructure:"regime_dd_max" json:"regime_dd_max" validate:"gte=0"`
	WFOPFMin          float64 `mapstructure:"wfo_pf_min" json:"wfo_pf_min" validate:"gte=0"`
	WFOPassRatioMin   float64 `mapstructure:"wfo_pass_ratio_min" json:"wfo_pass_ratio_min" validate:"gte=0,lte=1"`
	WFOCatastrophicPF float64 `mapstructure:"wfo_catastrophic_pf" json:"wfo_catastrophic_pf" validate:"gte=0"`
	WFOCatastrophicDD float64 `mapstructure:"wfo_catastrophic_dd" json:"wfo_catastrophic_dd" validate:"gte=0"`
}

// DefaultSplitThresholds returns the production limits.
func DefaultSplitThresholds() SplitThresholds {
	return SplitThresholds{
		CombinedPFMin:     2.0,
		CombinedDDMax:     15.0,
		CombinedTradesMin: 300,
		RegimePFMin:       1.2,
		RegimeDDMax:       20.0,
		WFOPFMin:          1.4,
		WFOPassRatioMin:   0.60,
		WFOCatastrophicPF: 1.0,
		WFOCatastrophicDD: 25.0,
	}
}

// SplitPolicy builds the combined/regime/walk-forward policy.
func SplitPolicy(th SplitThresholds) Policy {
	return Policy{
		Name: "splits",
		Tiers: []Tier{
			{
				Name:       TierCombined,
				Split:      core.SplitCombined,
				Quantifier: Any,
				Member: func(r core.RunRecord) bool {
					if r.ProfitFactor == nil || r.DrawdownPct == nil || r.Trades == nil {
						return false
					}
					return *r.ProfitFactor > th.CombinedPFMin &&
						*r.DrawdownPct <= th.CombinedDDMax &&
						*r.Trades >= th.CombinedTradesMin
				},
			},
			{
				Name:       TierRegimeOOS,
				Split:      core.SplitRegimeOOS,
				Quantifier: Any,
				Member: func(r core.RunRecord) bool {
					return r.ProfitFactor != nil && *r.ProfitFactor >= th.RegimePFMin &&
						atMost(r.DrawdownPct, th.RegimeDDMax)
				},
			},
			{
				Name:       TierWFOStability,
				Split:      core.SplitWFO,
				Quantifier: Ratio,
				RatioMin:   th.WFOPassRatioMin,
				Member: func(r core.RunRecord) bool {
					return r.ProfitFactor != nil && *r.ProfitFactor >= th.WFOPFMin
				},
				// Only the conjunction of weak PF and deep drawdown is catastrophic.
				Guard: func(r core.RunRecord) bool {
					return !(has(r.ProfitFactor) && has(r.DrawdownPct) &&
						*r.ProfitFactor < th.WFOCatastrophicPF &&
						*r.DrawdownPct > th.WFOCatastrophicDD)
				},
			},
		},
	}
}

// SplitAcceptance is the verdict of the split-run policy.
type SplitAcceptance struct {
	CombinedPass      bool            `json:"combined_pass"`
	RegimeOOSPass     bool            `json:"regime_oos_pass"`
	WFOStabilityPass  bool            `json:"wfo_stability_pass"`
	OverallPass       bool            `json:"overall_pass"`
	Counts            map[string]int  `json:"counts"`
	WFOPassRatio      float64         `json:"wfo_pass_ratio"`
	WFONoCatastrophic bool            `json:"wfo_no_catastrophic_fold"`
	CombinedBest      *core.RunRecord `json:"combined_best"`
	RegimeBest        *core.RunRecord `json:"regime_best"`
	Tiers             []TierResult    `json:"tiers"`
}

// EvaluateSplits applies the split-run policy.
func EvaluateSplits(records []core.RunRecord, th SplitThresholds) SplitAcceptance {
	res := SplitPolicy(th).Evaluate(records)
	combined, _ := res.Tier(TierCombined)
	regime, _ := res.Tier(TierRegimeOOS)
	wfo, _ := res.Tier(TierWFOStability)

	total := 0
	for _, g := range res.Groups {
		total += len(g)
	}

	return SplitAcceptance{
		CombinedPass:     combined.Pass,
		RegimeOOSPass:    regime.Pass,
		WFOStabilityPass: wfo.Pass,
		OverallPass:      res.Pass,
		Counts: map[string]int{
			string(core.SplitCombined):  len(res.Groups[core.SplitCombined]),
			string(core.SplitRegimeOOS): len(res.Groups[core.SplitRegimeOOS]),
			string(core.SplitWFO):       len(res.Groups[core.SplitWFO]),
			string(core.SplitUnknown):   len(res.Groups[core.SplitUnknown]),
			"total":                     total,
		},
		WFOPassRatio:      numeric.Round(wfo.Ratio, 4),
		WFONoCatastrophic: wfo.GuardOK,
		CombinedBest:      Best(res.Groups[core.SplitCombined]),
		RegimeBest:        Best(res.Groups[core.SplitRegimeOOS]),
		Tiers:             res.Tiers,
	}
}

// PassMap returns the tier flags for notification.
func (a SplitAcceptance) PassMap() map[string]bool {
	return map[string]bool{
		TierCombined:     a.CombinedPass,
		TierRegimeOOS:    a.RegimeOOSPass,
		TierWFOStability: a.WFOStabilityPass,
	}
}
