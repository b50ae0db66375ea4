package core

import (
	"time"

	"github.com/google/uuid"
)

// SplitClass is the evaluation split a run belongs to.
type SplitClass string

const (
	SplitCombined  SplitClass = "combined"
	SplitRegimeOOS SplitClass = "regime_oos"
	SplitWFO       SplitClass = "wfo"
	SplitIS        SplitClass = "is"
	SplitOOS       SplitClass = "oos"
	SplitHoldout   SplitClass = "holdout"
	SplitStress    SplitClass = "stress"
	SplitUnknown   SplitClass = "unknown"
)

// MetricsSource records which artifact produced a run's metrics.
type MetricsSource string

const (
	SourceStructured MetricsSource = "structured"
	SourceEventLog   MetricsSource = "event_log"
	SourceNone       MetricsSource = "none"
)

// Metrics holds the canonical performance figures of one run.
// A nil field means the value could not be derived.
type Metrics struct {
	ProfitFactor *float64
	DrawdownPct  *float64
	Trades       *int
	NetProfit    *float64
}

// RunRecord is one evaluated backtest run.
type RunRecord struct {
	ID         uuid.UUID     `json:"id"`
	Label      string        `json:"run_label"`
	SplitTag   string        `json:"split_tag"`
	SplitClass SplitClass    `json:"split_class"`
	FromDate   string        `json:"from_date"`
	ToDate     string        `json:"to_date"`
	Source     MetricsSource `json:"metrics_source"`

	ProfitFactor *float64 `json:"profit_factor"`
	DrawdownPct  *float64 `json:"drawdown_pct"`
	Trades       *int     `json:"trades"`
	NetProfit    *float64 `json:"net_profit"`

	ReportPath   string `json:"report_xml"`
	ReportHTML   string `json:"report_html"`
	TradeLogPath string `json:"trade_log_csv"`

	ConfigSHA256    string   `json:"config_sha256"`
	DurationSeconds *float64 `json:"duration_seconds"`
	ExitCode        *int     `json:"terminal_exit_code"`

	// Set only by stress cross-referencing against the best in-sample run.
	PFDegradationPct *float64 `json:"pf_degradation_from_best_is_pct,omitempty"`
}

// NewRunRecord builds a record carrying the given metrics.
func NewRunRecord(label, tag string, class SplitClass, source MetricsSource, m Metrics) RunRecord {
	return RunRecord{
		Label:        label,
		SplitTag:     tag,
		SplitClass:   class,
		Source:       source,
		ProfitFactor: m.ProfitFactor,
		DrawdownPct:  m.DrawdownPct,
		Trades:       m.Trades,
		NetProfit:    m.NetProfit,
	}
}

// Metrics returns the canonical figures of the record.
func (r RunRecord) Metrics() Metrics {
	return Metrics{
		ProfitFactor: r.ProfitFactor,
		DrawdownPct:  r.DrawdownPct,
		Trades:       r.Trades,
		NetProfit:    r.NetProfit,
	}
}

// HasMetrics reports whether the record may enter gate evaluation.
func (r RunRecord) HasMetrics() bool {
	return r.Source != "" && r.Source != SourceNone
}

// WithDegradation returns a copy of the record with the degradation figure attached.
func (r RunRecord) WithDegradation(pct *float64) RunRecord {
	r.PFDegradationPct = pct
	return r
}

// RunNamespace seeds deterministic run identifiers.
var RunNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("splitgate.run"))

// RunID derives a stable identifier from the parts that name a run.
func RunID(parts ...string) uuid.UUID {
	key := ""
	for i, p := range parts {
		if i > 0 {
			key += "|"
		}
		key += p
	}
	return uuid.NewSHA1(RunNamespace, []byte(key))
}

// Verdict is the outcome of one evaluation command, published to notifiers.
type Verdict struct {
	Command        string          `json:"command"`
	Pass           bool            `json:"pass"`
	Classification string          `json:"classification,omitempty"`
	Summary        string          `json:"summary"`
	Tiers          map[string]bool `json:"tiers,omitempty"`
	GeneratedAt    time.Time       `json:"generated_at"`
}
