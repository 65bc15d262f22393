package indicators

// Stochastic computes %K (smoothed by smoothK) and %D over highs/lows/
// closes.
func Stochastic(highs, lows, closes []float64, k, d, smoothK int) (pctK, pctD []float64) {
	n := len(closes)
	pctK, pctD = nanSlice(n), nanSlice(n)
	if k <= 0 || n < k {
		return pctK, pctD
	}

	rawK := nanSlice(n)
	for i := k - 1; i < n; i++ {
		hh := highest(highs[i-k+1 : i+1])
		ll := lowest(lows[i-k+1 : i+1])
		if hh == ll {
			rawK[i] = 50
			continue
		}
		rawK[i] = 100 * (closes[i] - ll) / (hh - ll)
	}

	if smoothK <= 1 {
		copy(pctK, rawK)
	} else {
		for i := k - 1 + smoothK - 1; i < n; i++ {
			window := definedWindow(rawK, i-smoothK+1, i+1)
			if len(window) == smoothK {
				pctK[i] = mean(window)
			}
		}
	}

	if d <= 1 {
		copy(pctD, pctK)
		return pctK, pctD
	}
	for i := 0; i < n; i++ {
		window := definedWindow(pctK, i-d+1, i+1)
		if len(window) == d {
			pctD[i] = mean(window)
		}
	}
	return pctK, pctD
}

// definedWindow returns values[from:to] if every entry is defined
// (non-NaN) and the bounds are in range, otherwise nil.
func definedWindow(values []float64, from, to int) []float64 {
	if from < 0 || to > len(values) {
		return nil
	}
	window := values[from:to]
	for _, v := range window {
		if !IsDefined(v) {
			return nil
		}
	}
	return window
}
