package rules

import (
	"math"

	"chartpatterns/internal/models"
)

// BreakoutFound scans forward from fromIdx (exclusive) for the first
// bar that strictly breaks necklinePrice in the direction implied by
// kind, within searchMaxBars. Returns the breakout index, or -1 with a
// failing Result if none is found.
func BreakoutFound(series models.PriceSeries, necklinePrice float64, fromIdx, searchMaxBars int, kind models.Kind) (Result, int) {
	closes := series.Closes()
	n := len(closes)
	limit := fromIdx + searchMaxBars
	if limit > n-1 {
		limit = n - 1
	}
	bullish := isBullishKind(kind)
	for i := fromIdx + 1; i <= limit; i++ {
		if bullish {
			if closes[i] > necklinePrice {
				return pass(), i
			}
		} else {
			if closes[i] < necklinePrice {
				return pass(), i
			}
		}
	}
	return fail("no breakout within search_max_bars"), -1
}

// BreakoutVolume checks that volume at breakoutIdx reaches
// multiplier*mean(volume) over the lookbackBars bars preceding it.
func BreakoutVolume(series models.PriceSeries, breakoutIdx, lookbackBars int, multiplier float64) Result {
	volumes := series.Volumes()
	from := breakoutIdx - lookbackBars
	if from < 0 {
		from = 0
	}
	if from >= breakoutIdx {
		return fail("not enough history to average pre-breakout volume")
	}
	var sum int64
	for i := from; i < breakoutIdx; i++ {
		sum += volumes[i]
	}
	avg := float64(sum) / float64(breakoutIdx-from)
	if avg <= 0 {
		return fail("non-positive average pre-breakout volume")
	}
	if float64(volumes[breakoutIdx]) >= multiplier*avg {
		return pass()
	}
	return fail("breakout volume is below the required multiplier")
}

// NecklineRetest checks that retestPrice sits within
// max(atrMultiplier*atr, pctOfNeckline*necklinePrice) of the neckline.
// When ATR is missing or zero the ATR term is simply zero, so the
// percentage band alone governs.
func NecklineRetest(retestPrice, necklinePrice, atr, atrMultiplier, pctOfNeckline float64) Result {
	atrBand := 0.0
	if atr > 0 && !math.IsNaN(atr) {
		atrBand = atrMultiplier * atr
	}
	pctBand := pctOfNeckline * math.Abs(necklinePrice)
	threshold := math.Max(atrBand, pctBand)
	if math.Abs(retestPrice-necklinePrice) <= threshold {
		return pass()
	}
	return fail("retest price is outside the neckline tolerance band")
}
