// Package gate evaluates groups of runs against layered acceptance tiers.
//
// Every policy is a list of Tier values. A tier selects the records of one
// split, applies a per-member threshold predicate under a quantifier, and
// optionally a guard and a group-level check. The comparison operators and
// empty-group behaviour of each tier are part of its definition.
package gate

import (
	"github.com/newthinker/splitgate/internal/core"
)

// Predicate tests one record.
type Predicate func(core.RunRecord) bool

// Quantifier decides how member results combine.
type Quantifier string

const (
	// Any passes when at least one member satisfies the predicate.
	Any Quantifier = "any"
	// Every passes when all members satisfy the predicate.
	Every Quantifier = "every"
	// Ratio passes when the passing fraction reaches Tier.RatioMin.
	Ratio Quantifier = "ratio"
)

// EmptyPolicy decides the outcome of a tier with no members.
type EmptyPolicy int

const (
	// EmptyFails makes an empty group fail the tier.
	EmptyFails EmptyPolicy = iota
	// EmptyNotApplicable marks the tier as not applicable, which counts as passing.
	EmptyNotApplicable
)

// Tier is one acceptance rule over a split group.
type Tier struct {
	Name       string
	Split      core.SplitClass
	Quantifier Quantifier
	Member     Predicate
	RatioMin   float64
	// Guard must hold for every member, otherwise the tier fails regardless
	// of the quantifier.
	Guard Predicate
	// Check is an optional condition over the whole group.
	Check func([]core.RunRecord) bool
	Empty EmptyPolicy
}

// TierResult is the outcome of one tier.
type TierResult struct {
	Name       string          `json:"name"`
	Split      core.SplitClass `json:"split"`
	Quantifier Quantifier      `json:"quantifier"`
	Members    int             `json:"members"`
	Passing    int             `json:"passing"`
	Ratio      float64         `json:"ratio"`
	GuardOK    bool            `json:"guard_ok"`
	Applicable bool            `json:"applicable"`
	Pass       bool            `json:"pass"`
}

// Evaluate applies the tier to its members.
func (t Tier) Evaluate(members []core.RunRecord) TierResult {
	res := TierResult{
		Name:       t.Name,
		Split:      t.Split,
		Quantifier: t.Quantifier,
		Members:    len(members),
		Applicable: true,
	}
	if len(members) == 0 {
		if t.Empty == EmptyNotApplicable {
			res.Applicable = false
			res.Pass = true
		}
		return res
	}

	res.GuardOK = true
	for _, m := range members {
		if t.Member(m) {
			res.Passing++
		}
		if t.Guard != nil && !t.Guard(m) {
			res.GuardOK = false
		}
	}
	res.Ratio = float64(res.Passing) / float64(len(members))

	var quantified bool
	switch t.Quantifier {
	case Any:
		quantified = res.Passing > 0
	case Every:
		quantified = res.Passing == len(members)
	case Ratio:
		quantified = res.Ratio >= t.RatioMin
	}

	res.Pass = quantified && res.GuardOK
	if res.Pass && t.Check != nil {
		res.Pass = t.Check(members)
	}
	return res
}

// Policy is an ordered set of tiers whose conjunction is the overall verdict.
type Policy struct {
	Name  string
	Tiers []Tier
}

// PolicyResult is the outcome of a policy.
type PolicyResult struct {
	Policy string                               `json:"policy"`
	Tiers  []TierResult                         `json:"tiers"`
	Groups map[core.SplitClass][]core.RunRecord `json:"-"`
	Pass   bool                                 `json:"pass"`
}

// Tier returns the result of the named tier.
func (r PolicyResult) Tier(name string) (TierResult, bool) {
	for _, t := range r.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return TierResult{}, false
}

// PassMap returns tier name to pass flag.
func (r PolicyResult) PassMap() map[string]bool {
	out := make(map[string]bool, len(r.Tiers))
	for _, t := range r.Tiers {
		out[t.Name] = t.Pass
	}
	return out
}

// Evaluate groups the records by split and applies every tier. Records
// without metrics never enter a group.
func (p Policy) Evaluate(records []core.RunRecord) PolicyResult {
	groups := GroupBySplit(records)
	res := PolicyResult{Policy: p.Name, Groups: groups, Pass: true}
	for _, t := range p.Tiers {
		tr := t.Evaluate(groups[t.Split])
		res.Tiers = append(res.Tiers, tr)
		if !tr.Pass {
			res.Pass = false
		}
	}
	return res
}

// GroupBySplit partitions records with metrics by split class, keeping order.
func GroupBySplit(records []core.RunRecord) map[core.SplitClass][]core.RunRecord {
	groups := make(map[core.SplitClass][]core.RunRecord)
	for _, r := range records {
		if !r.HasMetrics() {
			continue
		}
		groups[r.SplitClass] = append(groups[r.SplitClass], r)
	}
	return groups
}

// Best returns the first record with the highest profit factor.
func Best(records []core.RunRecord) *core.RunRecord {
	var best *core.RunRecord
	for i := range records {
		pf := records[i].ProfitFactor
		if pf == nil {
			continue
		}
		if best == nil || *pf > *best.ProfitFactor {
			best = &records[i]
		}
	}
	return best
}

func has(v *float64) bool { return v != nil }

func atMost(v *float64, limit float64) bool { return v != nil && *v <= limit }

func absentOrAtMost(v *float64, limit float64) bool { return v == nil || *v <= limit }
