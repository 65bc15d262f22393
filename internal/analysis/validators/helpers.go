package validators

import (
	"math"

	"chartpatterns/internal/analysis/indicators"
	"chartpatterns/internal/analysis/rules"
	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

func atrAt(cols indicators.Columns, idx int) float64 {
	if idx < 0 || idx >= len(cols.ATR) {
		return math.NaN()
	}
	return cols.ATR[idx]
}

func macdHistAt(cols indicators.Columns, idx int) float64 {
	if idx < 0 || idx >= len(cols.MACDHist) {
		return math.NaN()
	}
	return cols.MACDHist[idx]
}

func stochKAt(cols indicators.Columns, idx int) float64 {
	if idx < 0 || idx >= len(cols.StochK) {
		return math.NaN()
	}
	return cols.StochK[idx]
}

func stochDAt(cols indicators.Columns, idx int) float64 {
	if idx < 0 || idx >= len(cols.StochD) {
		return math.NaN()
	}
	return cols.StochD[idx]
}

func rsiCloseAt(cols indicators.Columns, idx int) float64 {
	if idx < 0 || idx >= len(cols.RSIClose) {
		return math.NaN()
	}
	return cols.RSIClose[idx]
}

// windowEnd bounds a rule's scan window to the breakout bar when one
// was found, falling back to the last structural pivot otherwise, and
// never exceeding the series length.
func windowEnd(breakoutIdx, fallbackIdx, seriesLen int) int {
	end := fallbackIdx
	if breakoutIdx >= 0 {
		end = breakoutIdx
	}
	if end > seriesLen-1 {
		end = seriesLen - 1
	}
	return end
}

// endIdx is the last bar a record's window spans: the retest pivot
// when it lies after the breakout bar or no breakout was found, else
// the breakout bar; the last structural pivot is used only when
// retestIdx is not positive and no breakout was found.
func endIdx(retestIdx, breakoutIdx, fallbackIdx int) int {
	if retestIdx > 0 && (breakoutIdx < 0 || retestIdx > breakoutIdx) {
		return retestIdx
	}
	if breakoutIdx >= 0 {
		return breakoutIdx
	}
	return fallbackIdx
}

func toPivotFields(pivots []models.Pivot) []models.PivotField {
	out := make([]models.PivotField, len(pivots))
	for i, p := range pivots {
		out[i] = models.PivotField{Idx: p.Idx, Price: p.Price, Kind: p.Kind}
	}
	return out
}

func volumeBreakoutAt(series models.PriceSeries, breakoutIdx int, cfg config.VolumeBreakoutConfig) rules.Result {
	if breakoutIdx < 0 {
		return retestFail("no breakout bar to measure volume at")
	}
	return rules.BreakoutVolume(series, breakoutIdx, cfg.LookbackBars, cfg.Multiplier)
}

// rsiDivergenceHNS evaluates RSI divergence between the left shoulder
// and the head, the pairing used to confirm momentum weakening into
// the pattern's deepest extreme.
func rsiDivergenceHNS(ls, head models.Pivot, cols indicators.Columns, cfg config.RSIConfig) rules.Result {
	return rules.RSIDivergence(ls, head, rsiCloseAt(cols, ls.Idx), rsiCloseAt(cols, head.Idx), cfg)
}
