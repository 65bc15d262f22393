package rules

import (
	"math"

	"chartpatterns/internal/models"
)

// ExtremityInContext checks that pivot.Price is the strict extremum of
// a comparison window of size max(minBars, factor*avgPivotSeparation)
// bars. When pastOnly is false the window is centered on the pivot
// (used for HNS and DTB); when true it is the width bars strictly
// preceding it (the TT/TB p1 variant). The pivot's own bar is always
// excluded; an empty window after exclusion fails closed.
func ExtremityInContext(series models.PriceSeries, pivot models.Pivot, avgPivotSeparation float64, minBars int, factor float64, pastOnly bool) Result {
	n := series.Len()
	width := int(math.Max(float64(minBars), factor*avgPivotSeparation))
	if width <= 0 {
		return fail("non-positive comparison window width")
	}

	var from, to int
	if pastOnly {
		from = pivot.Idx - width
		to = pivot.Idx - 1
	} else {
		from = pivot.Idx - width/2
		to = pivot.Idx + width/2
	}
	if from < 0 {
		from = 0
	}
	if to > n-1 {
		to = n - 1
	}
	if from > to {
		return fail("empty comparison window after excluding the pivot bar")
	}

	closes := series.Closes()
	examined := 0
	for i := from; i <= to; i++ {
		if i == pivot.Idx {
			continue
		}
		examined++
		switch pivot.Kind {
		case models.Peak:
			if closes[i] >= pivot.Price {
				return fail("a bar in the window is at or above the peak")
			}
		case models.Valley:
			if closes[i] <= pivot.Price {
				return fail("a bar in the window is at or below the valley")
			}
		}
	}
	if examined == 0 {
		return fail("empty comparison window after excluding the pivot bar")
	}
	return pass()
}
