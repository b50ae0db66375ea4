// Package export renders evaluation results as CSV, JSON, XLSX and console
// tables, and writes them to the output store.
package export

import (
	"math"
	"path"
	"strconv"
	"strings"
)

// Float formats an optional figure for tabular output. Absent values are
// empty and infinities are "inf".
func Float(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	switch {
	case math.IsInf(*v, 1):
		return "inf"
	case math.IsInf(*v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Int formats an optional count.
func Int(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// Bool formats a flag the way the CSV consumers expect.
func Bool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// WithSuffix replaces the extension of prefix's last element with ext.
func WithSuffix(prefix, ext string) string {
	return strings.TrimSuffix(prefix, path.Ext(path.Base(prefix))) + ext
}

// WithName appends suffix to prefix's last element.
func WithName(prefix, suffix string) string {
	return prefix + suffix
}
