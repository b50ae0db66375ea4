// Package split assigns runs and reports to evaluation splits.
package split

import (
	"strings"

	"github.com/newthinker/splitgate/internal/core"
)

// Keywords are the substrings that identify each run split, checked in
// priority order: regime, then walk-forward, then combined.
type Keywords struct {
	Regime      []string `mapstructure:"regime" json:"regime" validate:"required,dive,required"`
	WalkForward []string `mapstructure:"walk_forward" json:"walk_forward" validate:"required,dive,required"`
	Combined    []string `mapstructure:"combined" json:"combined" validate:"required,dive,required"`
}

// DefaultKeywords returns the keyword sets used by the split runner.
func DefaultKeywords() Keywords {
	return Keywords{
		Regime:      []string{"regime", "nov2025", "2025-11", "hard_oos"},
		WalkForward: []string{"wfo", "fold", "forward", "oos", "test"},
		Combined:    []string{"combined", "full", "all", "is", "train", "insample"},
	}
}

// ReportKeywords identify the split of a walk-forward report from its file
// name, checked in the order holdout, stress, oos, is.
type ReportKeywords struct {
	Holdout  []string `mapstructure:"holdout" json:"holdout" validate:"required,dive,required"`
	Stress   []string `mapstructure:"stress" json:"stress" validate:"required,dive,required"`
	OOS      []string `mapstructure:"oos" json:"oos" validate:"required,dive,required"`
	InSample []string `mapstructure:"in_sample" json:"in_sample" validate:"required,dive,required"`
}

// DefaultReportKeywords returns the report-name keyword sets.
func DefaultReportKeywords() ReportKeywords {
	return ReportKeywords{
		Holdout:  []string{"holdout", "final"},
		Stress:   []string{"stress"},
		OOS:      []string{"oos", "forward"},
		InSample: []string{"is", "insample", "train"},
	}
}

type rule struct {
	class core.SplitClass
	keys  []string
}

// Classifier maps free-text labels to split classes by first-match priority.
type Classifier struct {
	runRules    []rule
	reportRules []rule
}

// NewClassifier builds a classifier from the two keyword sets.
func NewClassifier(runs Keywords, reports ReportKeywords) *Classifier {
	return &Classifier{
		runRules: []rule{
			{core.SplitRegimeOOS, lower(runs.Regime)},
			{core.SplitWFO, lower(runs.WalkForward)},
			{core.SplitCombined, lower(runs.Combined)},
		},
		reportRules: []rule{
			{core.SplitHoldout, lower(reports.Holdout)},
			{core.SplitStress, lower(reports.Stress)},
			{core.SplitOOS, lower(reports.OOS)},
			{core.SplitIS, lower(reports.InSample)},
		},
	}
}

// Default returns a classifier with the default keyword sets.
func Default() *Classifier {
	return NewClassifier(DefaultKeywords(), DefaultReportKeywords())
}

// ClassifyRun classifies a run from its split tag and label.
func (c *Classifier) ClassifyRun(splitTag, runLabel string) core.SplitClass {
	return match(c.runRules, strings.ToLower(splitTag+" "+runLabel))
}

// ClassifyReportName classifies a report from its file stem.
func (c *Classifier) ClassifyReportName(stem string) core.SplitClass {
	return match(c.reportRules, strings.ToLower(stem))
}

func match(rules []rule, token string) core.SplitClass {
	for _, r := range rules {
		for _, key := range r.keys {
			if strings.Contains(token, key) {
				return r.class
			}
		}
	}
	return core.SplitUnknown
}

func lower(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = strings.ToLower(k)
	}
	return out
}
