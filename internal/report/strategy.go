package report

import (
	"regexp"
	"strings"

	"github.com/newthinker/splitgate/internal/numeric"
)

// numberPattern captures an optionally negative number with a "." or ","
// decimal part.
const numberPattern = `(-?\d+(?:[\.,]\d+)?)`

// Strategy extracts a single field value from a report.
type Strategy interface {
	Name() string
	Extract(doc *Document) (float64, bool)
}

// TagLookup probes element names in order and takes the first whose text
// parses as a number.
type TagLookup struct {
	Tags []string
}

func (t TagLookup) Name() string { return "structured" }

func (t TagLookup) Extract(doc *Document) (float64, bool) {
	if !doc.Structured() {
		return 0, false
	}
	for _, tag := range t.Tags {
		el := doc.find(tag)
		if el == nil {
			continue
		}
		text := strings.TrimSpace(el.Text())
		if v, ok := numeric.Parse(text); ok {
			return v, true
		}
	}
	return 0, false
}

// TextPattern searches the flattened report text with label patterns in
// order and takes the first match.
type TextPattern struct {
	Patterns []*regexp.Regexp
}

func (p TextPattern) Name() string { return "text" }

func (p TextPattern) Extract(doc *Document) (float64, bool) {
	text := doc.Text()
	for _, re := range p.Patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		// A matched label with an unparseable value ends the search.
		return numeric.Parse(m[1])
	}
	return 0, false
}

// Labels compiles case-insensitive label patterns. Each label is followed by
// any run of non-digits and the captured number; a trailing "%" suffix is
// appended when percent is true.
func Labels(percent bool, labels ...string) TextPattern {
	patterns := make([]*regexp.Regexp, 0, len(labels))
	for _, label := range labels {
		expr := `(?i)` + label + `\D+` + numberPattern
		if percent {
			expr += `\s*%`
		}
		patterns = append(patterns, regexp.MustCompile(expr))
	}
	return TextPattern{Patterns: patterns}
}
