package indicators

import "chartpatterns/internal/models"

// ATR computes the Average True Range via Wilder's smoothing of the
// true range. When there isn't enough history to form the Wilder seed
// window (period+1 bars) but at least two bars exist, it falls back to
// an EMA-style recursive smoothing seeded on the first true-range value
// — the in-core equivalent of the pandas-ta empty-frame fallback
// described in the source material.
func ATR(bars []models.Bar, period int) []float64 {
	n := len(bars)
	result := nanSlice(n)
	if period <= 0 || n < 2 {
		return result
	}

	tr := make([]float64, n)
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < n; i++ {
		tr[i] = trueRange(bars[i], bars[i-1])
	}

	if n < period+1 {
		return atrEMAFallback(tr, period)
	}

	result[period-1] = mean(tr[:period])
	for i := period; i < n; i++ {
		result[i] = (result[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return result
}

func atrEMAFallback(tr []float64, period int) []float64 {
	n := len(tr)
	result := nanSlice(n)
	if n == 0 {
		return result
	}
	multiplier := 2.0 / float64(period+1)
	result[0] = tr[0]
	for i := 1; i < n; i++ {
		result[i] = (tr[i]-result[i-1])*multiplier + result[i-1]
	}
	return result
}
