package rules

import (
	"math"

	"chartpatterns/internal/models"
)

// SymmetryExtremes checks that every extreme in extremes (p1, p3[, p5])
// sits within toleranceFactor*patternHeight of the first one.
func SymmetryExtremes(extremes []models.Pivot, patternHeight, toleranceFactor float64) Result {
	if len(extremes) == 0 {
		return fail("no extremes given")
	}
	if patternHeight <= 0 {
		return fail("non-positive pattern height")
	}
	reference := extremes[0].Price
	for _, p := range extremes[1:] {
		if math.Abs(p.Price-reference) > toleranceFactor*patternHeight {
			return fail("an extreme deviates beyond the symmetry tolerance")
		}
	}
	return pass()
}

// TrendContext checks that the prior pivots leading into the pattern
// rise from the first to the last by at least minDiffFactor*patternHeight
// for a top pattern (DT/TT), or fall by that much for a bottom pattern
// (DB/TB). Only the first and last prior pivot prices are compared; the
// pivots in between are not checked for a higher-high/higher-low (or
// lower-high/lower-low) sequence.
func TrendContext(priorPivots []models.Pivot, kind models.Kind, patternHeight, minDiffFactor float64) Result {
	if len(priorPivots) < 2 {
		return fail("not enough prior pivots to establish trend context")
	}
	minDiff := minDiffFactor * patternHeight
	first, last := priorPivots[0], priorPivots[len(priorPivots)-1]
	switch kind {
	case models.KindDT, models.KindTT:
		if last.Price-first.Price >= minDiff {
			return pass()
		}
		return fail("prior trend is not a sufficient uptrend for a top pattern")
	case models.KindDB, models.KindTB:
		if first.Price-last.Price >= minDiff {
			return pass()
		}
		return fail("prior trend is not a sufficient downtrend for a bottom pattern")
	default:
		return fail("trend context is not defined for the HNS family")
	}
}
