package indicator

import "math"

// Rolling helpers shared by the indicator families. Every function takes
// and returns series aligned 1:1 with the input; NaN marks warm-up
// positions. Leading NaNs in the input (e.g. a MACD line feeding its
// signal EMA) shift the output warm-up accordingly.

// firstValid returns the index of the first non-NaN value, or len(vals).
func firstValid(vals []float64) int {
	for i, v := range vals {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(vals)
}

// nanSeries returns a series of n NaNs.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// smaSeries computes a rolling simple moving average. A NaN input restarts
// the window: only positions whose window contains the NaN stay NaN.
func smaSeries(vals []float64, period int) []float64 {
	out := nanSeries(len(vals))
	if period <= 0 {
		return out
	}
	sum := 0.0
	valid := 0 // consecutive non-NaN inputs ending at i
	for i, v := range vals {
		if math.IsNaN(v) {
			sum, valid = 0, 0
			continue
		}
		sum += v
		valid++
		if valid > period {
			sum -= vals[i-period]
			valid = period
		}
		if valid == period {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// emaSeries computes an exponential moving average seeded with the SMA of
// the first period values.
func emaSeries(vals []float64, period int) []float64 {
	out := nanSeries(len(vals))
	start := firstValid(vals)
	if period <= 0 || len(vals)-start < period {
		return out
	}
	sum := 0.0
	for i := start; i < start+period; i++ {
		sum += vals[i]
	}
	ema := sum / float64(period)
	out[start+period-1] = ema

	k := 2.0 / (float64(period) + 1.0)
	for i := start + period; i < len(vals); i++ {
		ema = (vals[i]-ema)*k + ema
		out[i] = ema
	}
	return out
}

// stdSeries computes the rolling population standard deviation.
func stdSeries(vals []float64, period int) []float64 {
	out := nanSeries(len(vals))
	start := firstValid(vals)
	if period <= 0 || len(vals)-start < period {
		return out
	}
	for i := start + period - 1; i < len(vals); i++ {
		mean := 0.0
		for j := i - period + 1; j <= i; j++ {
			mean += vals[j]
		}
		mean /= float64(period)
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := vals[j] - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(period))
	}
	return out
}

// rollingMin computes the rolling window minimum.
func rollingMin(vals []float64, period int) []float64 {
	out := nanSeries(len(vals))
	start := firstValid(vals)
	if period <= 0 || len(vals)-start < period {
		return out
	}
	for i := start + period - 1; i < len(vals); i++ {
		m := vals[i]
		for j := i - period + 1; j < i; j++ {
			if vals[j] < m {
				m = vals[j]
			}
		}
		out[i] = m
	}
	return out
}

// rollingMax computes the rolling window maximum.
func rollingMax(vals []float64, period int) []float64 {
	out := nanSeries(len(vals))
	start := firstValid(vals)
	if period <= 0 || len(vals)-start < period {
		return out
	}
	for i := start + period - 1; i < len(vals); i++ {
		m := vals[i]
		for j := i - period + 1; j < i; j++ {
			if vals[j] > m {
				m = vals[j]
			}
		}
		out[i] = m
	}
	return out
}

// last returns a pointer to the final value of the series, or nil when the
// series is empty or its final value is NaN.
func last(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	v := vals[len(vals)-1]
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// secondLast returns a pointer to the second-to-last value, nil-safe like last.
func secondLast(vals []float64) *float64 {
	if len(vals) < 2 {
		return nil
	}
	v := vals[len(vals)-2]
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
