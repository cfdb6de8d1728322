package formulas

// MaxDrawdown calculates the maximum peak-to-trough decline of an equity
// curve, expressed as a positive fraction (0.2 = 20% drawdown).
func MaxDrawdown(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}

	peak := equity[0]
	maxDD := 0.0
	for _, value := range equity[1:] {
		if value > peak {
			peak = value
			continue
		}
		if peak > 0 {
			dd := (peak - value) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
