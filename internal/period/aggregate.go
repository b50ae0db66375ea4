package period

import (
	"encoding/json"
	"math"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/numeric"
)

// Classifications of a whole validation run.
const (
	ProductionCandidate = "production-candidate"
	NicheProfile        = "niche-profile"
)

// Summary is the run-level verdict over all scored periods.
type Summary struct {
	Objective                 Thresholds `json:"objective"`
	Classification            string     `json:"classification"`
	MonthsPassed              int        `json:"months_passed"`
	MonthsTotal               int        `json:"months_total"`
	MonthsWithTradesMin       int        `json:"months_with_trades_min"`
	MedianMonthlyPF           *float64   `json:"median_monthly_pf"`
	MedianMonthlyBalanceRatio *float64   `json:"median_monthly_balance_ratio"`
	WorstMonthDDPct           *float64   `json:"worst_month_dd_pct"`
	DeterminismAvgPFDrift     *float64   `json:"determinism_avg_pf_drift"`
	DeterminismOK             bool       `json:"determinism_ok"`
	Months                    []Row      `json:"months"`
}

// ProductionCandidate reports whether the run cleared every check.
func (s Summary) ProductionCandidate() bool {
	return s.Classification == ProductionCandidate
}

// Aggregate classifies the run. A nil drift means no determinism check was
// attempted, which satisfies that check.
func Aggregate(rows []Row, th Thresholds, drift *float64) Summary {
	s := Summary{
		Objective:             th,
		MonthsTotal:           len(rows),
		DeterminismAvgPFDrift: drift,
		Months:                rows,
	}

	var pfs, ratios []float64
	worst := math.Inf(-1)
	hasDD := false
	for _, r := range rows {
		if r.Passed {
			s.MonthsPassed++
		}
		if r.Trades >= th.TradesMin {
			s.MonthsWithTradesMin++
		}
		if r.DDPct != nil {
			hasDD = true
			worst = math.Max(worst, *r.DDPct)
		}
		if r.PF != nil {
			pfs = append(pfs, *r.PF)
		}
		if r.BalanceRatio != nil {
			ratios = append(ratios, *r.BalanceRatio)
		}
	}

	if hasDD {
		s.WorstMonthDDPct = &worst
	}
	s.MedianMonthlyPF = numeric.Ptr(numeric.Median(numeric.Finite(pfs)))
	s.MedianMonthlyBalanceRatio = numeric.Ptr(numeric.Median(numeric.Finite(ratios)))
	s.DeterminismOK = drift == nil || *drift <= th.DeterminismMaxDrift

	candidate := s.MonthsPassed >= th.MonthsPassMin &&
		s.MonthsWithTradesMin >= th.MonthsTradesMin &&
		s.WorstMonthDDPct != nil && *s.WorstMonthDDPct <= th.CatastrophicDDMax &&
		s.DeterminismOK
	if candidate {
		s.Classification = ProductionCandidate
	} else {
		s.Classification = NicheProfile
	}
	return s
}

// MarshalJSON encodes non-finite aggregates as "inf" or null.
func (s Summary) MarshalJSON() ([]byte, error) {
	type alias Summary
	return json.Marshal(struct {
		alias
		MedianMonthlyPF           any `json:"median_monthly_pf"`
		MedianMonthlyBalanceRatio any `json:"median_monthly_balance_ratio"`
		WorstMonthDDPct           any `json:"worst_month_dd_pct"`
		DeterminismAvgPFDrift     any `json:"determinism_avg_pf_drift"`
	}{
		alias:                     alias(s),
		MedianMonthlyPF:           core.JSONFloat(s.MedianMonthlyPF),
		MedianMonthlyBalanceRatio: core.JSONFloat(s.MedianMonthlyBalanceRatio),
		WorstMonthDDPct:           core.JSONFloat(s.WorstMonthDDPct),
		DeterminismAvgPFDrift:     core.JSONFloat(s.DeterminismAvgPFDrift),
	})
}
