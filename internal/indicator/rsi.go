package indicator

// RSI calculates the Relative Strength Index from simple averages of the last
// period price deltas. Bar i is defined once period deltas exist (i >= period).
// A window without losses reads 100.
func RSI(prices []float64, period int) Series {
	result := make(Series, len(prices))
	if period <= 0 {
		return result
	}

	for i := period; i < len(prices); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			delta := prices[j] - prices[j-1]
			if delta > 0 {
				gain += delta
			} else {
				loss -= delta
			}
		}

		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)
		if avgLoss == 0 {
			result[i] = Some(100)
			continue
		}

		rs := avgGain / avgLoss
		result[i] = Some(100 - 100/(1+rs))
	}

	return result
}
