// Package report extracts canonical metrics from structured backtest reports.
package report

import (
	"math"

	"github.com/newthinker/splitgate/internal/core"
	"go.uber.org/zap"
)

// Result is the outcome of extracting one report.
type Result struct {
	Metrics core.Metrics
	// Sources names the strategy that produced each extracted field.
	Sources   map[Field]string
	Malformed bool
}

// Extractor applies a Profile to report documents.
type Extractor struct {
	profile Profile
	logger  *zap.Logger
}

// NewExtractor creates an extractor for the given profile.
func NewExtractor(profile Profile, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{profile: profile, logger: logger}
}

// Profile returns the extractor's field rules.
func (e *Extractor) Profile() Profile {
	return e.profile
}

// Extract derives metrics from raw report bytes. Each field is resolved
// independently; a malformed report degrades every field to text search over
// an empty string.
func (e *Extractor) Extract(data []byte) Result {
	doc, ok := Parse(data)
	if !ok {
		e.logger.Debug("report is not well-formed, using text fallback only",
			zap.String("profile", e.profile.Name))
	}
	res := e.ExtractDocument(doc)
	res.Malformed = !ok
	return res
}

// ExtractDocument resolves every field rule against an already parsed document.
func (e *Extractor) ExtractDocument(doc *Document) Result {
	res := Result{Sources: make(map[Field]string)}
	for _, rule := range e.profile.Rules {
		v, source, ok := resolve(doc, rule.Strategies)
		if !ok {
			continue
		}
		res.Sources[rule.Field] = source
		assign(&res.Metrics, rule.Field, v)
	}
	return res
}

func resolve(doc *Document, strategies []Strategy) (float64, string, bool) {
	for _, s := range strategies {
		if v, ok := s.Extract(doc); ok {
			return v, s.Name(), true
		}
	}
	return 0, "", false
}

func assign(m *core.Metrics, field Field, v float64) {
	switch field {
	case FieldProfitFactor:
		m.ProfitFactor = &v
	case FieldDrawdownPct:
		m.DrawdownPct = &v
	case FieldNetProfit:
		m.NetProfit = &v
	case FieldTrades:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return
		}
		n := int(v)
		m.Trades = &n
	}
}
