// Package indicators is the pure, per-series indicator engine (C2):
// Enrich computes every configured column once per PriceSeries so rules
// and validators read indices, not labels.
package indicators

import (
	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

// Columns holds one value per bar for every indicator the rule library
// consumes. Length always equals the source series length; entries that
// cannot yet be computed are NaN rather than omitted.
type Columns struct {
	RSIClose []float64
	RSIHigh  []float64
	RSILow   []float64

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	StochK []float64
	StochD []float64

	OBV []float64
	ATR []float64
}

// Enrich computes Columns for series under cfg. Pure function, no
// suspension points — every column is derived from the bars already in
// memory.
func Enrich(series models.PriceSeries, cfg config.Config) Columns {
	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()

	macdLine, macdSignal, macdHist := MACD(closes, cfg.MACD.Fast, cfg.MACD.Slow, cfg.MACD.Signal)
	stochK, stochD := Stochastic(highs, lows, closes, cfg.Stochastic.K, cfg.Stochastic.D, cfg.Stochastic.SmoothK)

	return Columns{
		RSIClose: RSI(closes, cfg.RSI.Length),
		RSIHigh:  RSI(highs, cfg.RSI.Length),
		RSILow:   RSI(lows, cfg.RSI.Length),

		MACD:       macdLine,
		MACDSignal: macdSignal,
		MACDHist:   macdHist,

		StochK: stochK,
		StochD: stochD,

		OBV: OBV(closes, volumes),
		ATR: ATR(series.Bars, 14),
	}
}

// Len returns the number of bars the columns were computed over,
// assuming the invariant that every column shares the series length.
func (c Columns) Len() int {
	return len(c.RSIClose)
}
