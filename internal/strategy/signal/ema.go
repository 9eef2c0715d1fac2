package signal

// EMA returns the exponential moving average series of closes with
// alpha = 2/(period+1), seeded by the first close (no warm-up adjustment).
// The input slice is not modified.
func EMA(closes []float64, period int) []float64 {
	if len(closes) == 0 || period <= 0 {
		return nil
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = alpha*closes[i] + (1-alpha)*out[i-1]
	}
	return out
}

// LastEMA is EMA without keeping the series.
func LastEMA(closes []float64, period int) (float64, bool) {
	if len(closes) == 0 || period <= 0 {
		return 0, false
	}
	alpha := 2.0 / float64(period+1)
	ema := closes[0]
	for _, c := range closes[1:] {
		ema = alpha*c + (1-alpha)*ema
	}
	return ema, true
}
