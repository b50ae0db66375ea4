package tradelog

import (
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Bucket accumulates closed-trade results for one slice of the log.
type Bucket struct {
	Trades      int
	Wins        int
	Losses      int
	GrossProfit decimal.Decimal
	// GrossLoss is the signed sum of losing trades (zero or negative).
	GrossLoss decimal.Decimal
	NetProfit decimal.Decimal
}

// Update adds one closed trade.
func (b *Bucket) Update(profit decimal.Decimal) {
	b.Trades++
	b.NetProfit = b.NetProfit.Add(profit)
	switch {
	case profit.IsPositive():
		b.Wins++
		b.GrossProfit = b.GrossProfit.Add(profit)
	case profit.IsNegative():
		b.Losses++
		b.GrossLoss = b.GrossLoss.Add(profit)
	}
}

// WinRatePct is the share of winning trades in percent.
func (b Bucket) WinRatePct() float64 {
	if b.Trades <= 0 {
		return 0
	}
	return 100 * float64(b.Wins) / float64(b.Trades)
}

// Summary rounds the bucket for reporting.
func (b Bucket) Summary() BucketSummary {
	return BucketSummary{
		Trades:      b.Trades,
		Wins:        b.Wins,
		Losses:      b.Losses,
		WinRatePct:  decimal.NewFromFloat(b.WinRatePct()).Round(4).InexactFloat64(),
		GrossProfit: b.GrossProfit.Round(2).InexactFloat64(),
		GrossLoss:   b.GrossLoss.Round(2).InexactFloat64(),
		NetProfit:   b.NetProfit.Round(2).InexactFloat64(),
	}
}

// BucketSummary is the reported form of a Bucket.
type BucketSummary struct {
	Trades      int     `json:"trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRatePct  float64 `json:"win_rate_pct"`
	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"`
	NetProfit   float64 `json:"net_profit"`
}

// MonthSummary is a BucketSummary for one calendar month.
type MonthSummary struct {
	Month string `json:"month"`
	BucketSummary
}

// Analysis is the diagnostic view of a whole trade log.
type Analysis struct {
	LogPath                 string                   `json:"log_path"`
	EventCounts             map[string]int           `json:"event_counts"`
	TradeMetrics            BucketSummary            `json:"trade_metrics"`
	MonthlyMetrics          []MonthSummary           `json:"monthly_metrics"`
	RegimeMetrics           map[string]BucketSummary `json:"regime_metrics"`
	GateStatsRows           int                      `json:"gate_stats_rows"`
	GateStatsLatest         map[string]string        `json:"gate_stats_latest"`
	RejectCompositionLatest map[string]string        `json:"reject_composition_latest"`
	RegimeStatsRows         int                      `json:"regime_stats_rows"`
	RegimeStatsLatest       map[string]string        `json:"regime_stats_latest"`

	// GateRows keeps every GATE_STATS row for the tabular export.
	GateRows []map[string]string `json:"-"`
}

// Analyzer folds log rows into an Analysis.
type Analyzer struct {
	windows    []RegimeWindow
	counts     map[string]int
	overall    Bucket
	monthly    map[string]*Bucket
	regimes    []Bucket
	gateRows   []map[string]string
	regimeRows []map[string]string
}

// NewAnalyzer creates an analyzer that splits trades across the given regimes.
func NewAnalyzer(windows []RegimeWindow) *Analyzer {
	return &Analyzer{
		windows: windows,
		counts:  make(map[string]int),
		monthly: make(map[string]*Bucket),
		regimes: make([]Bucket, len(windows)),
	}
}

// Observe applies one row.
func (a *Analyzer) Observe(row Row) {
	event := row.Get("event")
	a.counts[event]++

	switch event {
	case EventGateStats:
		a.gateRows = append(a.gateRows, summaryRow(row))
		return
	case EventRegimeStats:
		a.regimeRows = append(a.regimeRows, summaryRow(row))
		return
	case EventDealOut:
	default:
		return
	}

	ts, ok := ParseTimestamp(row.Get("timestamp"))
	if !ok {
		return
	}
	profit, ok := ParseProfit(row["reason"])
	if !ok {
		return
	}

	a.overall.Update(profit)
	month := ts.Format("2006-01")
	b, exists := a.monthly[month]
	if !exists {
		b = &Bucket{}
		a.monthly[month] = b
	}
	b.Update(profit)

	for i, w := range a.windows {
		if w.Contains(ts) {
			a.regimes[i].Update(profit)
			break
		}
	}
}

// Analysis returns the diagnostics gathered so far.
func (a *Analyzer) Analysis(logPath string) Analysis {
	months := make([]string, 0, len(a.monthly))
	for m := range a.monthly {
		months = append(months, m)
	}
	sort.Strings(months)

	monthly := make([]MonthSummary, 0, len(months))
	for _, m := range months {
		monthly = append(monthly, MonthSummary{Month: m, BucketSummary: a.monthly[m].Summary()})
	}

	regimes := make(map[string]BucketSummary, len(a.windows))
	for i, w := range a.windows {
		regimes[w.Name] = a.regimes[i].Summary()
	}

	latestGate := latest(a.gateRows)
	rejects := make(map[string]string)
	for k, v := range latestGate {
		if strings.HasPrefix(k, "r_") {
			rejects[k] = v
		}
	}

	return Analysis{
		LogPath:                 logPath,
		EventCounts:             a.counts,
		TradeMetrics:            a.overall.Summary(),
		MonthlyMetrics:          monthly,
		RegimeMetrics:           regimes,
		GateStatsRows:           len(a.gateRows),
		GateStatsLatest:         latestGate,
		RejectCompositionLatest: rejects,
		RegimeStatsRows:         len(a.regimeRows),
		RegimeStatsLatest:       latest(a.regimeRows),
		GateRows:                a.gateRows,
	}
}

// Analyze reads a whole log.
func Analyze(r io.Reader, logPath string, windows []RegimeWindow) (Analysis, error) {
	reader, err := NewReader(r)
	if err != nil {
		return Analysis{}, err
	}
	a := NewAnalyzer(windows)
	if err := reader.Each(a.Observe); err != nil {
		return Analysis{}, err
	}
	return a.Analysis(logPath), nil
}

// ParseKeyValues splits space-separated key=value tokens. Tokens without "="
// are ignored.
func ParseKeyValues(summary string) map[string]string {
	parsed := make(map[string]string)
	for _, token := range strings.Fields(summary) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		parsed[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return parsed
}

func summaryRow(row Row) map[string]string {
	parsed := ParseKeyValues(row["comment"])
	parsed["timestamp"] = row["timestamp"]
	parsed["label"] = row["reason"]
	return parsed
}

func latest(rows []map[string]string) map[string]string {
	if len(rows) == 0 {
		return map[string]string{}
	}
	return rows[len(rows)-1]
}
