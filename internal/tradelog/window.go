package tradelog

import (
	"fmt"
	"time"
)

// TimestampLayouts are the accepted trade-log timestamp formats.
var TimestampLayouts = []string{"2006.01.02 15:04:05", "2006-01-02 15:04:05"}

// ParseTimestamp parses a log timestamp in any accepted layout.
func ParseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range TimestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Window is a named calendar range used to split trades into market regimes.
type Window struct {
	Name string `mapstructure:"name" json:"name" validate:"required"`
	From string `mapstructure:"from" json:"from" validate:"logtime"`
	To   string `mapstructure:"to" json:"to" validate:"logtime"`
}

// RegimeWindow is a parsed Window. Both bounds are inclusive.
type RegimeWindow struct {
	Name string
	From time.Time
	To   time.Time
}

// Compile parses the window bounds.
func (w Window) Compile() (RegimeWindow, error) {
	from, ok := ParseTimestamp(w.From)
	if !ok {
		return RegimeWindow{}, fmt.Errorf("regime %q: invalid from %q", w.Name, w.From)
	}
	to, ok := ParseTimestamp(w.To)
	if !ok {
		return RegimeWindow{}, fmt.Errorf("regime %q: invalid to %q", w.Name, w.To)
	}
	if to.Before(from) {
		return RegimeWindow{}, fmt.Errorf("regime %q: to before from", w.Name)
	}
	return RegimeWindow{Name: w.Name, From: from, To: to}, nil
}

// Contains reports whether ts falls inside the window.
func (w RegimeWindow) Contains(ts time.Time) bool {
	return !ts.Before(w.From) && !ts.After(w.To)
}

// CompileWindows parses every window, failing on the first invalid one.
func CompileWindows(windows []Window) ([]RegimeWindow, error) {
	out := make([]RegimeWindow, 0, len(windows))
	for _, w := range windows {
		rw, err := w.Compile()
		if err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, nil
}

// DefaultWindows returns the early and late regimes of the reference dataset.
func DefaultWindows() []Window {
	return []Window{
		{Name: "early_2025_08_to_2025_10", From: "2025-08-01 00:00:00", To: "2025-10-31 23:59:59"},
		{Name: "late_2025_11_to_2026_02", From: "2025-11-01 00:00:00", To: "2026-02-28 23:59:59"},
	}
}
