// Package candidates enumerates fixed-width pivot windows (C5): for
// each family, a sliding window over the recent pivot tail that
// requires only the correct alternation of kinds. Validation of the
// window's substance belongs to the rules and validators packages —
// enumeration only establishes shape.
package candidates

import "chartpatterns/internal/models"

// recentTail restricts pivots to at most the last lookback pivots, the
// recency bound shared by every family's enumerator (spec §4.1
// recent_patterns_lookback_count).
func recentTail(pivots []models.Pivot, lookback int) []models.Pivot {
	if lookback <= 0 || len(pivots) <= lookback {
		return pivots
	}
	return pivots[len(pivots)-lookback:]
}

func alternates(pivots []models.Pivot, firstKind models.PivotKind) bool {
	want := firstKind
	for _, p := range pivots {
		if p.Kind != want {
			return false
		}
		want = want.Opposite()
	}
	return true
}

// EnumerateHNS slides a 7-pivot window across the recency-bounded
// pivot tail, keeping every window whose kinds alternate. The three
// shoulder/head extremes sit at the odd positions (1, 3, 5); the base,
// two neckline anchors and retest sit at the even positions (0, 2, 4,
// 6). A window starting on a valley has peak extremes (a standard top,
// OCO); a window starting on a peak has valley extremes (an inverse
// bottom, OCOI). BreakoutIdx is set to -1 and HasRetest left false;
// the validators run their own breakout search and do not write either
// field back.
func EnumerateHNS(pivots []models.Pivot, lookback int) []models.HNSCandidate {
	tail := recentTail(pivots, lookback)
	const width = 7
	var out []models.HNSCandidate
	for i := 0; i+width <= len(tail); i++ {
		window := tail[i : i+width]
		var kind models.Kind
		switch {
		case alternates(window, models.Valley):
			kind = models.KindOCO
		case alternates(window, models.Peak):
			kind = models.KindOCOI
		default:
			continue
		}
		c := models.HNSCandidate{Kind: kind, BreakoutIdx: -1}
		copy(c.Pivots[:], window)
		out = append(out, c)
	}
	return out
}

// EnumerateDTB slides a 5-pivot window, keeping windows that alternate
// P-V-P-V-P (double top, DT) or V-P-V-P-V (double bottom, DB).
func EnumerateDTB(pivots []models.Pivot, lookback int) []models.DTBCandidate {
	tail := recentTail(pivots, lookback)
	const width = 5
	var out []models.DTBCandidate
	for i := 0; i+width <= len(tail); i++ {
		window := tail[i : i+width]
		var kind models.Kind
		switch {
		case alternates(window, models.Peak):
			kind = models.KindDT
		case alternates(window, models.Valley):
			kind = models.KindDB
		default:
			continue
		}
		c := models.DTBCandidate{Kind: kind, BreakoutIdx: -1}
		copy(c.Pivots[:], window)
		out = append(out, c)
	}
	return out
}

// EnumerateTTB slides a 7-pivot window, with the same even/odd
// extreme layout as EnumerateHNS: a window starting on a valley has
// peak extremes (triple top, TT); a window starting on a peak has
// valley extremes (triple bottom, TB).
func EnumerateTTB(pivots []models.Pivot, lookback int) []models.TTBCandidate {
	tail := recentTail(pivots, lookback)
	const width = 7
	var out []models.TTBCandidate
	for i := 0; i+width <= len(tail); i++ {
		window := tail[i : i+width]
		var kind models.Kind
		switch {
		case alternates(window, models.Valley):
			kind = models.KindTT
		case alternates(window, models.Peak):
			kind = models.KindTB
		default:
			continue
		}
		c := models.TTBCandidate{Kind: kind, BreakoutIdx: -1}
		copy(c.Pivots[:], window)
		out = append(out, c)
	}
	return out
}
