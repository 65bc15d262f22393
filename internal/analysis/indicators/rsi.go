package indicators

// RSI computes the Relative Strength Index over prices (close, high, or
// low — the spec requires all three variants) using Wilder smoothing.
// Entries before the period fills are NaN rather than omitted, so the
// returned slice always has len(prices) entries.
func RSI(prices []float64, period int) []float64 {
	n := len(prices)
	result := nanSlice(n)
	if period <= 0 || n < period+1 {
		return result
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	avgGain := mean(gains[1 : period+1])
	avgLoss := mean(losses[1 : period+1])
	result[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < n; i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		result[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return result
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
