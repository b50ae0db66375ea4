package export

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
	"strings"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/period"
	"github.com/newthinker/splitgate/internal/tradelog"
)

// RunColumns is the header of the split-run table.
var RunColumns = []string{
	"run_label", "split_tag", "split_class", "from_date", "to_date",
	"profit_factor", "drawdown_pct", "trades", "net_profit",
	"report_xml", "report_html", "trade_log_csv", "metrics_source",
	"config_sha256", "duration_seconds", "terminal_exit_code",
}

// ReportColumns is the header of the walk-forward report table.
var ReportColumns = []string{
	"path", "split", "profit_factor", "drawdown_pct", "trades", "net_profit",
	"pf_degradation_from_best_is_pct",
}

// PeriodColumns is the header of the scored-period table.
var PeriodColumns = []string{
	"month_key", "from_date", "to_date", "status", "pf", "dd_pct", "trades",
	"net_profit", "gross_profit", "gross_loss_abs", "balance_ratio", "passed",
	"reasons", "run_dir",
}

// MonthColumns is the header of the trade-log monthly table.
var MonthColumns = []string{
	"month", "trades", "wins", "losses", "win_rate_pct", "gross_profit",
	"gross_loss", "net_profit",
}

func runRow(r core.RunRecord) []string {
	return []string{
		r.Label, r.SplitTag, string(r.SplitClass), r.FromDate, r.ToDate,
		Float(r.ProfitFactor), Float(r.DrawdownPct), Int(r.Trades), Float(r.NetProfit),
		r.ReportPath, r.ReportHTML, r.TradeLogPath, string(r.Source),
		r.ConfigSHA256, Float(r.DurationSeconds), Int(r.ExitCode),
	}
}

func reportRow(r core.RunRecord) []string {
	return []string{
		r.ReportPath, string(r.SplitClass),
		Float(r.ProfitFactor), Float(r.DrawdownPct), Int(r.Trades), Float(r.NetProfit),
		Float(r.PFDegradationPct),
	}
}

func periodRow(r period.Row) []string {
	return []string{
		r.MonthKey, r.FromDate, r.ToDate, r.Status,
		Float(r.PF), Float(r.DDPct), strconv.Itoa(r.Trades),
		Float(&r.NetProfit), Float(&r.GrossProfit), Float(&r.GrossLossAbs),
		Float(r.BalanceRatio), Bool(r.Passed), strings.Join(r.Reasons, ","), r.RunDir,
	}
}

func monthRow(m tradelog.MonthSummary) []string {
	return []string{
		m.Month, strconv.Itoa(m.Trades), strconv.Itoa(m.Wins), strconv.Itoa(m.Losses),
		Float(&m.WinRatePct), Float(&m.GrossProfit), Float(&m.GrossLoss), Float(&m.NetProfit),
	}
}

// RunsCSV renders split-run records.
func RunsCSV(records []core.RunRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, runRow(r))
	}
	return encodeCSV(RunColumns, rows)
}

// ReportsCSV renders walk-forward report records.
func ReportsCSV(records []core.RunRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, reportRow(r))
	}
	return encodeCSV(ReportColumns, rows)
}

// PeriodsCSV renders scored periods.
func PeriodsCSV(periods []period.Row) ([]byte, error) {
	rows := make([][]string, 0, len(periods))
	for _, p := range periods {
		rows = append(rows, periodRow(p))
	}
	return encodeCSV(PeriodColumns, rows)
}

// MonthsCSV renders the monthly buckets of a trade-log analysis.
func MonthsCSV(months []tradelog.MonthSummary) ([]byte, error) {
	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, monthRow(m))
	}
	return encodeCSV(MonthColumns, rows)
}

// GateStatsCSV renders GATE_STATS rows. The header is timestamp and label
// followed by every other key seen, sorted.
func GateStatsCSV(stats []map[string]string) ([]byte, error) {
	keys := make(map[string]struct{})
	for _, row := range stats {
		for k := range row {
			if k != "timestamp" && k != "label" {
				keys[k] = struct{}{}
			}
		}
	}
	header := []string{"timestamp", "label"}
	rest := make([]string, 0, len(keys))
	for k := range keys {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	header = append(header, rest...)

	rows := make([][]string, 0, len(stats))
	for _, row := range stats {
		out := make([]string, len(header))
		for i, k := range header {
			out[i] = row[k]
		}
		rows = append(rows, out)
	}
	return encodeCSV(header, rows)
}

func encodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
