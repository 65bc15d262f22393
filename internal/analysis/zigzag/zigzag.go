// Package zigzag implements the deterministic ZigZag pivot extractor
// (C3): a reduction of a noisy close-price series to an alternating
// sequence of significant peaks and valleys.
package zigzag

import (
	"math"

	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

// Extract runs the ZigZag reduction over closes using deviationPercent
// as the minimum reversal size (as a percentage of the candidate
// price). The returned pivot list strictly alternates kinds with
// strictly increasing indices (spec §4.3, §8 invariants 1-2).
func Extract(closes []float64, deviationPercent float64, cfg config.ZigZagConfig) []models.Pivot {
	n := len(closes)
	if n == 0 || deviationPercent <= 0 {
		return nil
	}
	if n == 1 {
		return nil
	}

	pivots, trend, candidateIdx, candidatePrice := establishDirection(closes, deviationPercent)
	if trend == 0 {
		// Never reversed enough to establish a direction: no pivot is
		// confirmed, regardless of how noisy the series looked locally.
		return nil
	}

	for i := candidateIdx + 1; i < n; i++ {
		price := closes[i]
		switch trend {
		case 1: // uptrend: candidate tracks the running peak
			if price >= candidatePrice {
				candidateIdx, candidatePrice = i, price
				continue
			}
			if reversalReached(candidatePrice, price, deviationPercent) {
				pivots = appendPivot(pivots, models.Pivot{Idx: candidateIdx, Price: candidatePrice, Kind: models.Peak})
				trend = -1
				candidateIdx, candidatePrice = i, price
			}
		case -1: // downtrend: candidate tracks the running valley
			if price <= candidatePrice {
				candidateIdx, candidatePrice = i, price
				continue
			}
			if reversalReached(candidatePrice, price, deviationPercent) {
				pivots = appendPivot(pivots, models.Pivot{Idx: candidateIdx, Price: candidatePrice, Kind: models.Valley})
				trend = 1
				candidateIdx, candidatePrice = i, price
			}
		}
	}

	if cfg.ExtendToLastBar && len(pivots) > 0 {
		pivots = maybeExtend(pivots, closes, deviationPercent, cfg.ExtensionDeviationFactor)
	}

	return pivots
}

// establishDirection scans forward from the first bar tracking the
// running high and low until either deviates from its own anchor by at
// least deviationPercent, fixing the series' first confirmed pivot and
// starting trend. If neither ever reaches the threshold, trend is 0.
func establishDirection(closes []float64, deviationPercent float64) (pivots []models.Pivot, trend int, candidateIdx int, candidatePrice float64) {
	n := len(closes)
	runningMaxIdx, runningMax := 0, closes[0]
	runningMinIdx, runningMin := 0, closes[0]

	for i := 1; i < n; i++ {
		price := closes[i]
		if price > runningMax {
			runningMaxIdx, runningMax = i, price
		}
		if price < runningMin {
			runningMinIdx, runningMin = i, price
		}

		upFromMin := reversalReached(runningMin, price, deviationPercent) && i > runningMinIdx
		downFromMax := reversalReached(runningMax, price, deviationPercent) && i > runningMaxIdx

		switch {
		case upFromMin && downFromMax:
			// Both thresholds crossed on the same bar: whichever anchor
			// is closer to i actually reversed first.
			if runningMinIdx >= runningMaxIdx {
				return []models.Pivot{{Idx: runningMinIdx, Price: runningMin, Kind: models.Valley}}, 1, i, price
			}
			return []models.Pivot{{Idx: runningMaxIdx, Price: runningMax, Kind: models.Peak}}, -1, i, price
		case upFromMin:
			return []models.Pivot{{Idx: runningMinIdx, Price: runningMin, Kind: models.Valley}}, 1, i, price
		case downFromMax:
			return []models.Pivot{{Idx: runningMaxIdx, Price: runningMax, Kind: models.Peak}}, -1, i, price
		}
	}
	return nil, 0, 0, 0
}

func reversalReached(anchor, price, deviationPercent float64) bool {
	if anchor == 0 {
		return false
	}
	return math.Abs(price-anchor)/math.Abs(anchor)*100 >= deviationPercent
}

// appendPivot enforces strict alternation: if the new pivot shares its
// index with the last emitted one, the kind that alternates with the
// second-to-last pivot wins; ties on kind are broken by the more
// extreme price (spec §4.3 tie-breaking rule).
func appendPivot(pivots []models.Pivot, p models.Pivot) []models.Pivot {
	if len(pivots) == 0 {
		return []models.Pivot{p}
	}
	last := pivots[len(pivots)-1]
	if last.Idx != p.Idx {
		return append(pivots, p)
	}

	if len(pivots) >= 2 {
		prev := pivots[len(pivots)-2]
		lastAlternates := last.Kind == prev.Kind.Opposite()
		newAlternates := p.Kind == prev.Kind.Opposite()
		if newAlternates && !lastAlternates {
			pivots[len(pivots)-1] = p
			return pivots
		}
		if lastAlternates && !newAlternates {
			return pivots
		}
	}

	if moreExtreme(p, last) {
		pivots[len(pivots)-1] = p
	}
	return pivots
}

func moreExtreme(p, last models.Pivot) bool {
	if p.Kind == models.Peak {
		return p.Price > last.Price
	}
	return p.Price < last.Price
}

// maybeExtend appends a provisional trailing pivot at the last bar if
// its deviation from the last confirmed pivot reaches
// extensionFactor*deviationPercent.
func maybeExtend(pivots []models.Pivot, closes []float64, deviationPercent, extensionFactor float64) []models.Pivot {
	last := pivots[len(pivots)-1]
	lastIdx := len(closes) - 1
	if lastIdx <= last.Idx {
		return pivots
	}
	lastPrice := closes[lastIdx]
	threshold := extensionFactor * deviationPercent
	deviation := math.Abs(lastPrice-last.Price) / math.Abs(last.Price) * 100
	if deviation < threshold {
		return pivots
	}
	return append(pivots, models.Pivot{
		Idx:         lastIdx,
		Price:       lastPrice,
		Kind:        last.Kind.Opposite(),
		Provisional: true,
	})
}
