// Package validators is the pattern validator layer (C6): one function
// per family composing the rule library into a flag vector, a score,
// and an accept/reject decision. The state machine is linear and has
// no interleaving across candidates: Collected -> MandatoryPass ->
// Scored -> (Accepted|Rejected).
package validators

import (
	"math"

	"chartpatterns/internal/analysis/rules"
	"chartpatterns/internal/models"
)

// ruleOutcome pairs one rule's evaluated Result with its name and
// whether it belongs to the family's mandatory set.
type ruleOutcome struct {
	name      string
	result    rules.Result
	mandatory bool
}

// evaluation is the Scored state: every flag, whether every mandatory
// rule passed, and the weighted total.
type evaluation struct {
	flags        map[string]bool
	allMandatory bool
	score        int
}

func evaluate(outcomes []ruleOutcome, weights map[string]int) evaluation {
	flags := make(map[string]bool, len(outcomes))
	allMandatory := true
	score := 0
	for _, o := range outcomes {
		flags[o.name] = o.result.Pass
		if o.mandatory && !o.result.Pass {
			allMandatory = false
		}
		if o.result.Pass {
			score += weights[o.name]
		}
	}
	return evaluation{flags: flags, allMandatory: allMandatory, score: score}
}

// accept applies the final Accepted|Rejected transition: every
// mandatory rule must pass and the weighted score must clear the
// family's minimum (spec §4.6, §8 invariant 5).
func accept(ev evaluation, minimumScore int) bool {
	return ev.allMandatory && ev.score >= minimumScore
}

func absDiff(a, b float64) float64 {
	return math.Abs(a - b)
}

// startKindFor returns the kind the candidate's first pivot (p0, the
// base) must have for the given family variant, matching the
// even/odd-position extreme layout the enumerators build (spec §4.5):
// a top variant (OCO, TT) starts on a valley; a bottom variant (OCOI,
// TB) starts on a peak. DT/DB have no base pivot to anchor — their
// first element is itself the first extreme, so the convention is
// inverted: DT (top, peak extremes) starts on a peak, DB on a valley.
func startKindFor(kind models.Kind) models.PivotKind {
	switch kind {
	case models.KindOCO, models.KindTT:
		return models.Valley
	case models.KindOCOI, models.KindTB:
		return models.Peak
	case models.KindDT:
		return models.Peak
	case models.KindDB:
		return models.Valley
	default:
		return models.Valley
	}
}

func retestFail(reason string) rules.Result {
	return rules.Result{Pass: false, Reason: reason}
}
