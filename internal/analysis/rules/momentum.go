package rules

import (
	"math"

	"chartpatterns/internal/analysis/indicators"
	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

// RSIDivergence checks that RSI contradicts price between two extreme
// pivots of the same kind, gated on at least one side having reached
// the overbought/oversold threshold implied by the kind.
func RSIDivergence(p1, p2 models.Pivot, rsiAtP1, rsiAtP2 float64, cfg config.RSIConfig) Result {
	if !indicators.IsDefined(rsiAtP1) || !indicators.IsDefined(rsiAtP2) {
		return fail("RSI undefined at one of the extremes")
	}

	var gated bool
	switch p1.Kind {
	case models.Peak:
		gated = rsiAtP1 > cfg.Overbought || rsiAtP2 > cfg.Overbought
	case models.Valley:
		gated = rsiAtP1 < cfg.Oversold || rsiAtP2 < cfg.Oversold
	}
	if !gated {
		return fail("neither extreme reached the RSI overbought/oversold gate")
	}

	if !priceMoreExtreme(p1, p2) {
		return fail("price did not make a more extreme second extreme")
	}
	if rsiMoreExtreme(p1.Kind, rsiAtP1, rsiAtP2) {
		return fail("RSI confirms price rather than diverging from it")
	}

	delta := math.Abs(rsiAtP1 - rsiAtP2)
	strong := delta >= cfg.DivergenceMinDelta ||
		(p1.Kind == models.Peak && rsiAtP1 >= cfg.StrongOverbought) ||
		(p1.Kind == models.Valley && rsiAtP1 <= cfg.StrongOversold)
	if strong {
		return Result{Pass: true, Reason: "strong"}
	}
	return Result{Pass: true, Reason: "weak"}
}

func priceMoreExtreme(p1, p2 models.Pivot) bool {
	if p1.Kind == models.Peak {
		return p2.Price > p1.Price
	}
	return p2.Price < p1.Price
}

func rsiMoreExtreme(kind models.PivotKind, rsiAtP1, rsiAtP2 float64) bool {
	if kind == models.Peak {
		return rsiAtP2 > rsiAtP1
	}
	return rsiAtP2 < rsiAtP1
}

// MACDSignalCross detects a line/signal crossover in the direction kind
// implies anywhere within [from,to], accepting only if the most recent
// such crossover sits within cfg.CrossMaxAgeBars of the window end.
func MACDSignalCross(macdLine, macdSignal []float64, from, to int, kind models.Kind, cfg config.MACDConfig) Result {
	n := len(macdLine)
	if to > n-1 {
		to = n - 1
	}
	from = max0(from)
	wantBullish := isBullishKind(kind)
	lastCrossIdx := -1

	for i := max0(from + 1); i <= to; i++ {
		if !indicators.IsDefined(macdLine[i-1]) || !indicators.IsDefined(macdSignal[i-1]) ||
			!indicators.IsDefined(macdLine[i]) || !indicators.IsDefined(macdSignal[i]) {
			continue
		}
		prevDiff := macdLine[i-1] - macdSignal[i-1]
		curDiff := macdLine[i] - macdSignal[i]
		bullishCross := prevDiff <= 0 && curDiff > 0
		bearishCross := prevDiff >= 0 && curDiff < 0
		if (wantBullish && bullishCross) || (!wantBullish && bearishCross) {
			lastCrossIdx = i
		}
	}
	if lastCrossIdx == -1 {
		return fail("no signal crossover in the required direction")
	}
	if to-lastCrossIdx > cfg.CrossMaxAgeBars {
		return fail("most recent crossover is older than cross_max_age_bars")
	}
	return pass()
}

// MACDHistogramDivergence checks the histogram weakens between two
// extremes while price becomes more extreme.
func MACDHistogramDivergence(p1, p2 models.Pivot, histAtP1, histAtP2 float64) Result {
	if !indicators.IsDefined(histAtP1) || !indicators.IsDefined(histAtP2) {
		return fail("MACD histogram undefined at one of the extremes")
	}
	if !priceMoreExtreme(p1, p2) {
		return fail("price did not make a more extreme second extreme")
	}
	if math.Abs(histAtP2) < math.Abs(histAtP1) {
		return pass()
	}
	return fail("MACD histogram does not confirm a weakening move")
}

// StochasticConfirmation checks %K divergence at the extremes, or %K
// sitting on the confirming side of %D at the second extreme (below %D
// for peaks, above for valleys), gated on require_obos. Only the values
// at the second extreme are compared; a bar-to-bar %K/%D crossing is
// not detected.
func StochasticConfirmation(p1, p2 models.Pivot, kAtP1, kAtP2, dAtP2 float64, cfg config.StochasticConfig) Result {
	if !indicators.IsDefined(kAtP1) || !indicators.IsDefined(kAtP2) {
		return fail("%K undefined at one of the extremes")
	}
	if cfg.RequireOBOS {
		var gated bool
		switch p1.Kind {
		case models.Peak:
			gated = kAtP1 > cfg.Overbought || kAtP2 > cfg.Overbought
		case models.Valley:
			gated = kAtP1 < cfg.Oversold || kAtP2 < cfg.Oversold
		}
		if !gated {
			return fail("neither extreme reached the stochastic overbought/oversold gate")
		}
	}

	divergence := priceMoreExtreme(p1, p2) && !rsiMoreExtreme(p1.Kind, kAtP1, kAtP2)
	crossed := indicators.IsDefined(dAtP2) &&
		((p1.Kind == models.Peak && kAtP2 < dAtP2) || (p1.Kind == models.Valley && kAtP2 > dAtP2))
	if divergence || crossed {
		return pass()
	}
	return fail("stochastic neither diverges from price nor crosses in the confirming direction")
}

// OBVDivergence checks OBV's slope contradicts price between two
// extreme pivots.
func OBVDivergence(p1, p2 models.Pivot, obv []float64) Result {
	if p1.Idx < 0 || p2.Idx < 0 || p1.Idx >= len(obv) || p2.Idx >= len(obv) {
		return fail("pivot index out of range for OBV")
	}
	if !priceMoreExtreme(p1, p2) {
		return fail("price did not make a more extreme second extreme")
	}
	obvAtP1, obvAtP2 := obv[p1.Idx], obv[p2.Idx]
	var contradicts bool
	switch p1.Kind {
	case models.Peak:
		contradicts = obvAtP2 < obvAtP1
	case models.Valley:
		contradicts = obvAtP2 > obvAtP1
	}
	if contradicts {
		return pass()
	}
	return fail("OBV slope does not contradict price")
}

// VolumeProfile checks volume strictly decreases across successive
// extreme pivots (p1, p3[, p5]); every pivot must be at least one bar
// from the series start.
func VolumeProfile(series models.PriceSeries, extremes []models.Pivot) Result {
	volumes := series.Volumes()
	for _, p := range extremes {
		if p.Idx < 1 {
			return fail("an extreme is too close to the series start for a volume comparison")
		}
	}
	for i := 1; i < len(extremes); i++ {
		if volumes[extremes[i].Idx] >= volumes[extremes[i-1].Idx] {
			return fail("volume did not decrease across successive extremes")
		}
	}
	return pass()
}
