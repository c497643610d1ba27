package indicator

// SMA calculates Simple Moving Average
// The result is aligned with prices; the first period-1 values are undefined.
func SMA(prices []float64, period int) Series {
	result := make(Series, len(prices))
	if period <= 0 {
		return result
	}

	// Each window is summed from scratch so identical windows produce
	// identical averages.
	for i := period - 1; i < len(prices); i++ {
		var sum float64
		for _, p := range prices[i-period+1 : i+1] {
			sum += p
		}
		result[i] = Some(sum / float64(period))
	}

	return result
}

// EMA calculates Exponential Moving Average with smoothing 2/(span+1), seeded
// with the first price (non-adjusted form). Every bar is defined.
func EMA(prices []float64, span int) Series {
	result := make(Series, len(prices))
	if span <= 0 || len(prices) == 0 {
		return result
	}

	alpha := 2.0 / float64(span+1)
	ema := prices[0]
	result[0] = Some(ema)

	for i := 1; i < len(prices); i++ {
		ema += alpha * (prices[i] - ema)
		result[i] = Some(ema)
	}

	return result
}
