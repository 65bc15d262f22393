package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"chartpatterns/internal/config"
	"chartpatterns/internal/models"
)

// seriesGen builds a PriceSeries of n bars with valid OHLC relationships.
func seriesGen(n int) gopter.Gen {
	return gen.SliceOfN(n, gen.Float64Range(50, 500)).Map(func(closes []float64) models.PriceSeries {
		bars := make([]models.Bar, n)
		base := time.Now().Add(-time.Duration(n) * time.Hour)
		for i, c := range closes {
			h := c + 1
			l := c - 1
			if l < 0.1 {
				l = 0.1
			}
			bars[i] = models.Bar{
				Timestamp: base.Add(time.Duration(i) * time.Hour),
				Open:      c,
				High:      h,
				Low:       l,
				Close:     c,
				Volume:    1000 + int64(i),
			}
		}
		return models.PriceSeries{Ticker: "TEST", Interval: "1d", Bars: bars}
	})
}

// Property: for any valid series of at least 60 bars, every defined RSI
// and Stochastic value lies within [0, 100], and every column has the
// same length as the series (spec §8 invariants 3 and the RSI/Stoch
// mathematical bounds).
func TestIndicatorBoundsAndLength(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	cfg := config.Default()

	properties.Property("RSI and Stochastic stay within [0,100]; columns match series length", prop.ForAll(
		func(series models.PriceSeries) bool {
			cols := Enrich(series, cfg)
			n := series.Len()
			for _, col := range []([]float64){cols.RSIClose, cols.RSIHigh, cols.RSILow, cols.MACD, cols.MACDSignal, cols.MACDHist, cols.StochK, cols.StochD, cols.OBV, cols.ATR} {
				if len(col) != n {
					return false
				}
			}
			for _, v := range append(append([]float64{}, cols.RSIClose...), append(cols.RSIHigh, cols.RSILow...)...) {
				if IsDefined(v) && (v < 0 || v > 100) {
					return false
				}
			}
			for _, v := range append(append([]float64{}, cols.StochK...), cols.StochD...) {
				if IsDefined(v) && (v < 0 || v > 100) {
					return false
				}
			}
			return true
		},
		seriesGen(80),
	))

	properties.TestingRun(t)
}

func TestMACDAllNaNWhenSeriesTooShort(t *testing.T) {
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	line, sig, hist := MACD(closes, 12, 26, 9)
	for i := range closes {
		if IsDefined(line[i]) || IsDefined(sig[i]) || IsDefined(hist[i]) {
			t.Fatalf("expected NaN at %d for short series, got line=%v sig=%v hist=%v", i, line[i], sig[i], hist[i])
		}
	}
}

func TestATRNeverNegative(t *testing.T) {
	bars := []models.Bar{}
	base := time.Now()
	for i := 0; i < 30; i++ {
		c := 100 + math.Sin(float64(i))
		bars = append(bars, models.Bar{Timestamp: base.Add(time.Duration(i) * time.Hour), Open: c, High: c + 2, Low: c - 2, Close: c, Volume: 100})
	}
	atr := ATR(bars, 14)
	for _, v := range atr {
		if IsDefined(v) && v < 0 {
			t.Fatalf("ATR must never be negative, got %v", v)
		}
	}
}
