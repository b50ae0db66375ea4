package export

import (
	"encoding/json"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/gate"
)

// SplitPayload is the JSON document of the aggregate command.
type SplitPayload struct {
	Acceptance gate.SplitAcceptance `json:"acceptance"`
	Thresholds gate.SplitThresholds `json:"thresholds"`
	Runs       []core.RunRecord     `json:"runs"`
}

// WalkForwardPayload is the JSON document of the wfo command.
type WalkForwardPayload struct {
	Acceptance gate.WalkForwardAcceptance `json:"acceptance"`
	Thresholds gate.WalkForwardThresholds `json:"thresholds"`
	Reports    []Report                   `json:"reports"`
}

// Report is the walk-forward view of a record.
type Report struct {
	Path             string
	Split            core.SplitClass
	ProfitFactor     *float64
	DrawdownPct      *float64
	Trades           *int
	NetProfit        *float64
	PFDegradationPct *float64
}

// Reports converts records to their walk-forward view.
func Reports(records []core.RunRecord) []Report {
	out := make([]Report, 0, len(records))
	for _, r := range records {
		out = append(out, Report{
			Path:             r.ReportPath,
			Split:            r.SplitClass,
			ProfitFactor:     r.ProfitFactor,
			DrawdownPct:      r.DrawdownPct,
			Trades:           r.Trades,
			NetProfit:        r.NetProfit,
			PFDegradationPct: r.PFDegradationPct,
		})
	}
	return out
}

func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path             string          `json:"path"`
		Split            core.SplitClass `json:"split"`
		ProfitFactor     any             `json:"profit_factor"`
		DrawdownPct      any             `json:"drawdown_pct"`
		Trades           *int            `json:"trades"`
		NetProfit        any             `json:"net_profit"`
		PFDegradationPct any             `json:"pf_degradation_from_best_is_pct"`
	}{
		Path:             r.Path,
		Split:            r.Split,
		ProfitFactor:     core.JSONFloat(r.ProfitFactor),
		DrawdownPct:      core.JSONFloat(r.DrawdownPct),
		Trades:           r.Trades,
		NetProfit:        core.JSONFloat(r.NetProfit),
		PFDegradationPct: core.JSONFloat(r.PFDegradationPct),
	})
}

// JSON encodes v indented by two spaces, with a trailing newline.
func JSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
