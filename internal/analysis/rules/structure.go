package rules

import (
	"fmt"
	"math"

	"chartpatterns/internal/models"
)

// Structure checks that a candidate's pivots strictly alternate kind
// starting from firstKind, matching the family's required window shape
// (spec §4.4 structure(p1,p2,p3[,p4,p5])).
func Structure(pivots []models.Pivot, firstKind models.PivotKind) Result {
	if len(pivots) == 0 {
		return fail("empty pivot window")
	}
	want := firstKind
	for i, p := range pivots {
		if p.Kind != want {
			return fail(fmt.Sprintf("expected %s at position %d, got %s", want, i, p.Kind))
		}
		want = want.Opposite()
	}
	return pass()
}

// HeadMoreExtremeThanShoulders checks that head is a strict extremum
// relative to both shoulders, in the direction its own kind implies.
func HeadMoreExtremeThanShoulders(leftShoulder, head, rightShoulder models.Pivot) Result {
	switch head.Kind {
	case models.Peak:
		if head.Price > leftShoulder.Price && head.Price > rightShoulder.Price {
			return pass()
		}
	case models.Valley:
		if head.Price < leftShoulder.Price && head.Price < rightShoulder.Price {
			return pass()
		}
	}
	return fail("head is not the strict extreme of its shoulders")
}

// NecklineFlatness checks the two neckline anchors sit within
// tolerance*referenceHeight of each other (spec §4.4). For DT/DB the
// neckline is a single point, so ValidateDTB passes the same anchor
// twice and the rule is trivially true; HNS and TT/TB pass their two
// distinct neckline anchors.
func NecklineFlatness(neckline1, neckline2 models.Pivot, referenceHeight, tolerance float64) Result {
	diff := math.Abs(neckline1.Price - neckline2.Price)
	if referenceHeight <= 0 {
		if diff == 0 {
			return pass()
		}
		return fail("non-positive reference height with unequal neckline anchors")
	}
	if diff <= tolerance*referenceHeight {
		return pass()
	}
	return fail("neckline anchors diverge beyond the flatness tolerance")
}

// BaseTrend checks the base pivot p0 sits strictly beyond every
// neckline anchor, in the direction kind requires, with no tolerance.
func BaseTrend(base models.Pivot, necklineAnchors []models.Pivot, kind models.Kind) Result {
	for _, n := range necklineAnchors {
		switch kind {
		case models.KindOCO:
			if !(base.Price < n.Price) {
				return fail("base does not sit strictly below the neckline anchors")
			}
		case models.KindOCOI:
			if !(base.Price > n.Price) {
				return fail("base does not sit strictly above the neckline anchors")
			}
		default:
			return fail("base trend is only defined for the HNS family")
		}
	}
	return pass()
}
