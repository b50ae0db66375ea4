package period

import (
	"encoding/json"
	"strings"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/numeric"
)

// Reason codes attached to a failing period, in evaluation order.
const (
	ReasonStatus = "status_fail"
	ReasonTarget = "target_fail"
	ReasonPF     = "pf_fail"
	ReasonDD     = "dd_fail"
	ReasonTrades = "trades_fail"
)

// StatusOK is the only source status that does not flag a period.
const StatusOK = "ok"

// Row is one scored period.
type Row struct {
	MonthKey     string   `json:"month_key"`
	FromDate     string   `json:"from_date"`
	ToDate       string   `json:"to_date"`
	Status       string   `json:"status"`
	PF           *float64 `json:"pf"`
	DDPct        *float64 `json:"dd_pct"`
	Trades       int      `json:"trades"`
	NetProfit    float64  `json:"net_profit"`
	GrossProfit  float64  `json:"gross_profit"`
	GrossLossAbs float64  `json:"gross_loss_abs"`
	BalanceRatio *float64 `json:"balance_ratio"`
	Reasons      []string `json:"reasons"`
	Passed       bool     `json:"passed"`
	RunDir       string   `json:"run_dir"`
}

// Score evaluates one input row. Unparseable ratio, PF and drawdown cells
// fail their checks.
func Score(raw map[string]string, th Thresholds) Row {
	status := strings.TrimSpace(raw["status"])
	if status == "" {
		status = "unknown"
	}
	trades, _ := numeric.ParseCount(raw["trades"])

	row := Row{
		MonthKey:     raw["month_key"],
		FromDate:     raw["from_date"],
		ToDate:       raw["to_date"],
		Status:       status,
		PF:           numeric.Ptr(numeric.ParseCell(raw["pf"])),
		DDPct:        numeric.Ptr(numeric.ParseCell(raw["dd_pct"])),
		Trades:       trades,
		NetProfit:    cellOrZero(raw["net_profit"]),
		GrossProfit:  cellOrZero(raw["gross_profit"]),
		GrossLossAbs: cellOrZero(raw["gross_loss_abs"]),
		BalanceRatio: numeric.Ptr(numeric.ParseCell(raw["balance_ratio"])),
		Reasons:      []string{},
		RunDir:       raw["run_dir"],
	}

	if status != StatusOK {
		row.Reasons = append(row.Reasons, ReasonStatus)
	}
	if row.BalanceRatio == nil || *row.BalanceRatio < th.ObjectiveRatio {
		row.Reasons = append(row.Reasons, ReasonTarget)
	}
	if row.PF == nil || *row.PF < th.PFMin {
		row.Reasons = append(row.Reasons, ReasonPF)
	}
	if row.DDPct == nil || *row.DDPct > th.DDMax {
		row.Reasons = append(row.Reasons, ReasonDD)
	}
	if row.Trades < th.TradesMin {
		row.Reasons = append(row.Reasons, ReasonTrades)
	}
	row.Passed = len(row.Reasons) == 0
	return row
}

// ScoreAll scores every input row in order.
func ScoreAll(raws []map[string]string, th Thresholds) []Row {
	rows := make([]Row, 0, len(raws))
	for _, raw := range raws {
		rows = append(rows, Score(raw, th))
	}
	return rows
}

func cellOrZero(cell string) float64 {
	v, ok := numeric.ParseCell(cell)
	if !ok {
		return 0
	}
	return v
}

// MarshalJSON encodes infinite values as "inf" and absent ones as null.
func (r Row) MarshalJSON() ([]byte, error) {
	type alias Row
	return json.Marshal(struct {
		alias
		PF           any `json:"pf"`
		DDPct        any `json:"dd_pct"`
		NetProfit    any `json:"net_profit"`
		GrossProfit  any `json:"gross_profit"`
		GrossLossAbs any `json:"gross_loss_abs"`
		BalanceRatio any `json:"balance_ratio"`
	}{
		alias:        alias(r),
		PF:           core.JSONFloat(r.PF),
		DDPct:        core.JSONFloat(r.DDPct),
		NetProfit:    core.JSONFloat(&r.NetProfit),
		GrossProfit:  core.JSONFloat(&r.GrossProfit),
		GrossLossAbs: core.JSONFloat(&r.GrossLossAbs),
		BalanceRatio: core.JSONFloat(r.BalanceRatio),
	})
}
