package indicator

import "stock-signals/internal/model"

// calcMFI computes the Money Flow Index: a volume-weighted RSI analogue
// over the typical price (high+low+close)/3, range 0..100.
func (c *Calculator) calcMFI(highs, lows, closes, volumes []float64) model.MFIResult {
	period := c.cfg.MFIPeriod
	n := len(closes)
	series := nanSeries(n)
	res := model.MFIResult{Series: series}
	if period <= 0 || n < period+1 {
		return res
	}

	typical := make([]float64, n)
	for i := 0; i < n; i++ {
		typical[i] = (highs[i] + lows[i] + closes[i]) / 3.0
	}

	// Signed money flow per bar; flat typical price contributes nothing.
	posFlow := make([]float64, n)
	negFlow := make([]float64, n)
	for i := 1; i < n; i++ {
		flow := typical[i] * volumes[i]
		if typical[i] > typical[i-1] {
			posFlow[i] = flow
		} else if typical[i] < typical[i-1] {
			negFlow[i] = flow
		}
	}

	posSum, negSum := 0.0, 0.0
	for i := 1; i < n; i++ {
		posSum += posFlow[i]
		negSum += negFlow[i]
		if i > period {
			posSum -= posFlow[i-period]
			negSum -= negFlow[i-period]
		}
		if i >= period {
			if negSum == 0 {
				series[i] = 100.0
			} else {
				series[i] = 100.0 - 100.0/(1.0+posSum/negSum)
			}
		}
	}

	res.Value = last(series)
	if res.Value != nil {
		res.Overbought = *res.Value > 80
		res.Oversold = *res.Value < 20
	}
	return res
}
