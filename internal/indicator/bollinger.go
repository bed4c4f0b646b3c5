package indicator

import (
	"math"

	"stock-signals/internal/model"
)

// calcBollinger computes the bands (SMA ± k·σ, population std), breakout
// flags against the last close, and the volatility squeeze flag: current
// band width below (1 − threshold) × the rolling average width.
func (c *Calculator) calcBollinger(closes []float64) model.BollingerResult {
	period := c.cfg.BollingerPeriod
	middle := smaSeries(closes, period)
	std := stdSeries(closes, period)

	upper := nanSeries(len(closes))
	lower := nanSeries(len(closes))
	width := nanSeries(len(closes))
	for i := range closes {
		if !math.IsNaN(middle[i]) && !math.IsNaN(std[i]) {
			upper[i] = middle[i] + c.cfg.BollingerStdDev*std[i]
			lower[i] = middle[i] - c.cfg.BollingerStdDev*std[i]
			width[i] = upper[i] - lower[i]
		}
	}

	res := model.BollingerResult{
		Upper:        last(upper),
		Middle:       last(middle),
		Lower:        last(lower),
		UpperSeries:  upper,
		MiddleSeries: middle,
		LowerSeries:  lower,
	}

	if res.Upper != nil && res.Lower != nil && len(closes) > 0 {
		price := closes[len(closes)-1]
		res.BreakoutUpper = price > *res.Upper
		res.BreakoutLower = price < *res.Lower
	}

	avgWidth := smaSeries(width, period)
	if cur, avg := last(width), last(avgWidth); cur != nil && avg != nil {
		res.Squeeze = *cur < (1.0-c.cfg.SqueezeThreshold)**avg
	}

	return res
}
