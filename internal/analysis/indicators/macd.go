package indicators

// EMA computes the Exponential Moving Average over values, NaN-padded
// before the seed window.
func EMA(values []float64, period int) []float64 {
	n := len(values)
	result := nanSlice(n)
	if period <= 0 || n < period {
		return result
	}

	multiplier := 2.0 / float64(period+1)
	result[period-1] = mean(values[:period])
	for i := period; i < n; i++ {
		result[i] = (values[i]-result[i-1])*multiplier + result[i-1]
	}
	return result
}

// MACD computes the MACD line, its signal line, and the histogram.
// Requires at least slow+signal bars; shorter series yield all-NaN
// columns per spec §4.2.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	n := len(closes)
	line, sig, hist = nanSlice(n), nanSlice(n), nanSlice(n)
	if n < slow+signal {
		return line, sig, hist
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	for i := slow - 1; i < n; i++ {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	macdTail := line[slow-1:]
	signalTail := EMA(macdTail, signal)
	for i, v := range signalTail {
		if IsDefined(v) {
			sig[slow-1+i] = v
		}
	}

	for i := 0; i < n; i++ {
		if IsDefined(line[i]) && IsDefined(sig[i]) {
			hist[i] = line[i] - sig[i]
		}
	}
	return line, sig, hist
}
