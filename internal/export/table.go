package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/gate"
	"github.com/newthinker/splitgate/internal/period"
	"github.com/newthinker/splitgate/internal/tradelog"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

func mark(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// RenderRuns prints one line per record.
func RenderRuns(w io.Writer, title string, records []core.RunRecord) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"Run", "Split", "Source", "PF", "DD %", "Trades", "Net profit"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.Label, r.SplitClass, r.Source,
			orDash(Float(r.ProfitFactor)), orDash(Float(r.DrawdownPct)),
			orDash(Int(r.Trades)), orDash(Float(r.NetProfit)),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.Render()
}

// RenderTiers prints the outcome of every acceptance tier and the overall
// verdict.
func RenderTiers(w io.Writer, title string, tiers []gate.TierResult, overall bool) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"Tier", "Split", "Members", "Passing", "Ratio", "Result"})
	for _, tr := range tiers {
		result := mark(tr.Pass)
		if !tr.Applicable {
			result = "N/A"
		}
		t.AppendRow(table.Row{
			tr.Name, tr.Split, tr.Members, tr.Passing, fmt.Sprintf("%.4f", tr.Ratio), result,
		})
	}
	t.AppendFooter(table.Row{"overall", "", "", "", "", mark(overall)})
	t.Render()
}

// RenderPeriods prints the scored months and the run classification.
func RenderPeriods(w io.Writer, s period.Summary) {
	t := newTable(w, "MONTHLY SCORE")
	t.AppendHeader(table.Row{"Month", "Status", "PF", "DD %", "Trades", "Balance ratio", "Result", "Reasons"})
	for _, r := range s.Months {
		reasons := "-"
		if len(r.Reasons) > 0 {
			reasons = fmt.Sprint(r.Reasons)
		}
		t.AppendRow(table.Row{
			r.MonthKey, r.Status, orDash(Float(r.PF)), orDash(Float(r.DDPct)), r.Trades,
			orDash(Float(r.BalanceRatio)), mark(r.Passed), reasons,
		})
	}
	t.AppendFooter(table.Row{
		"classification", s.Classification,
		fmt.Sprintf("%d/%d passed", s.MonthsPassed, s.MonthsTotal), "", "", "", "", "",
	})
	t.Render()
}

// RenderAnalysis prints the overall, monthly and regime buckets of a trade
// log.
func RenderAnalysis(w io.Writer, a tradelog.Analysis) {
	t := newTable(w, "TRADE LOG")
	t.AppendHeader(table.Row{"Bucket", "Trades", "Wins", "Losses", "Win %", "Gross profit", "Gross loss", "Net profit"})

	row := func(name string, b tradelog.BucketSummary) table.Row {
		return table.Row{name, b.Trades, b.Wins, b.Losses, b.WinRatePct, b.GrossProfit, b.GrossLoss, b.NetProfit}
	}

	t.AppendRow(row("overall", a.TradeMetrics))
	t.AppendSeparator()
	for _, m := range a.MonthlyMetrics {
		t.AppendRow(row(m.Month, m.BucketSummary))
	}

	if len(a.RegimeMetrics) > 0 {
		t.AppendSeparator()
		names := make([]string, 0, len(a.RegimeMetrics))
		for name := range a.RegimeMetrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			t.AppendRow(row(name, a.RegimeMetrics[name]))
		}
	}
	t.Render()
}
