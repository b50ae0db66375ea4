// Package tradelog derives performance metrics by replaying raw trade-event logs.
package tradelog

import (
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/newthinker/splitgate/internal/core"
	"github.com/newthinker/splitgate/internal/numeric"
	"github.com/shopspring/decimal"
)

// Event names with special meaning in the log.
const (
	EventDealOut     = "DEAL_OUT"
	EventGateStats   = "GATE_STATS"
	EventRegimeStats = "REGIME_STATS"
)

var profitPattern = regexp.MustCompile(`(?i)profit=([-+]?\d+(?:\.\d+)?)`)

// ParseProfit extracts the signed profit embedded in a deal-close reason.
func ParseProfit(reason string) (decimal.Decimal, bool) {
	m := profitPattern.FindStringSubmatch(reason)
	if m == nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(m[1], "+"))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Replay holds the figures derived from a log.
type Replay struct {
	Trades       int
	NetProfit    float64
	GrossProfit  float64
	GrossLossAbs float64
	// nil when no row carried a parseable balance
	MaxDrawdownPct *float64
	// nil when there was neither profit nor loss
	ProfitFactor *float64
}

// Metrics converts the replay into canonical metrics.
func (r Replay) Metrics() core.Metrics {
	trades := r.Trades
	net := r.NetProfit
	return core.Metrics{
		ProfitFactor: r.ProfitFactor,
		DrawdownPct:  r.MaxDrawdownPct,
		Trades:       &trades,
		NetProfit:    &net,
	}
}

// Replayer folds log rows, in file order, into running totals.
type Replayer struct {
	peak    float64
	hasPeak bool
	maxDD   float64

	trades      int
	net         decimal.Decimal
	grossProfit decimal.Decimal
	grossLoss   decimal.Decimal
}

// NewReplayer creates an empty replayer.
func NewReplayer() *Replayer {
	return &Replayer{}
}

// Observe applies one row.
func (r *Replayer) Observe(row Row) {
	if balance, ok := numeric.ParseBalance(row["balance"]); ok {
		r.observeBalance(balance)
	}

	if row.Get("event") != EventDealOut {
		return
	}
	profit, ok := ParseProfit(row["reason"])
	if !ok {
		return
	}

	r.trades++
	r.net = r.net.Add(profit)
	switch {
	case profit.IsPositive():
		r.grossProfit = r.grossProfit.Add(profit)
	case profit.IsNegative():
		r.grossLoss = r.grossLoss.Add(profit.Abs())
	}
}

func (r *Replayer) observeBalance(balance float64) {
	if !r.hasPeak || balance > r.peak {
		r.peak = balance
		r.hasPeak = true
	}
	if r.peak > 0 {
		if dd := (r.peak - balance) / r.peak * 100; dd > r.maxDD {
			r.maxDD = dd
		}
	}
}

// Result returns the figures accumulated so far.
func (r *Replayer) Result() Replay {
	res := Replay{
		Trades:       r.trades,
		NetProfit:    r.net.InexactFloat64(),
		GrossProfit:  r.grossProfit.InexactFloat64(),
		GrossLossAbs: r.grossLoss.InexactFloat64(),
	}
	if r.hasPeak {
		dd := r.maxDD
		res.MaxDrawdownPct = &dd
	}

	switch {
	case r.grossLoss.IsPositive():
		pf := res.GrossProfit / res.GrossLossAbs
		res.ProfitFactor = &pf
	case r.grossProfit.IsPositive():
		pf := math.Inf(1)
		res.ProfitFactor = &pf
	}
	return res
}

// ReplayLog reads a whole log and replays it.
func ReplayLog(r io.Reader) (Replay, error) {
	reader, err := NewReader(r)
	if err != nil {
		return Replay{}, err
	}
	rp := NewReplayer()
	if err := reader.Each(rp.Observe); err != nil {
		return Replay{}, err
	}
	return rp.Result(), nil
}
