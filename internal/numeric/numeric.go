// Package numeric normalizes numeric text found in backtest artifacts.
//
// Every parser returns (value, ok). A false ok means the token is absent or
// unparseable; callers must treat it as a missing value, never as zero.
package numeric

import (
	"math"
	"strconv"
	"strings"
)

// Parse normalizes a locale-ambiguous token such as "2,5", "1,234.5" or
// " 12.4 %" into a float.
//
// A single comma with no dot is a decimal separator. When both appear, commas
// are thousands separators.
func Parse(token string) (float64, bool) {
	if token == "" {
		return 0, false
	}
	cleaned := strings.ReplaceAll(token, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "%", "")

	commas := strings.Count(cleaned, ",")
	dots := strings.Count(cleaned, ".")
	switch {
	case commas == 1 && dots == 0:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case commas > 0 && dots > 0:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	return parseFloat(cleaned)
}

// ParseBalance parses a trade-log balance cell. Commas are always thousands
// separators there.
func ParseBalance(cell string) (float64, bool) {
	return parseFloat(strings.TrimSpace(strings.ReplaceAll(cell, ",", "")))
}

// ParseCell parses a scored-period cell. "INF" in any case is +Inf.
func ParseCell(cell string) (float64, bool) {
	text := strings.TrimSpace(cell)
	if text == "" {
		return 0, false
	}
	if strings.ToUpper(text) == "INF" {
		return math.Inf(1), true
	}
	v, ok := parseFloat(text)
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ParseCount parses an integer count that may be written as a float ("12.0").
func ParseCount(cell string) (int, bool) {
	v, ok := ParseCell(cell)
	if !ok || math.IsInf(v, 0) {
		return 0, false
	}
	return int(v), true
}

// Ptr returns a pointer to v when ok, nil otherwise.
func Ptr(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
