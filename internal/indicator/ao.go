package indicator

import (
	"math"

	"stock-signals/internal/model"
)

// calcAO computes the Awesome Oscillator: fast SMA minus slow SMA of the
// bar midpoint (high+low)/2.
func (c *Calculator) calcAO(highs, lows []float64) model.AOResult {
	mid := make([]float64, len(highs))
	for i := range highs {
		mid[i] = (highs[i] + lows[i]) / 2.0
	}

	fast := smaSeries(mid, c.cfg.AOFast)
	slow := smaSeries(mid, c.cfg.AOSlow)

	ao := nanSeries(len(mid))
	for i := range mid {
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) {
			ao[i] = fast[i] - slow[i]
		}
	}

	res := model.AOResult{
		Value:  last(ao),
		Series: ao,
	}
	if cur, prev := last(ao), secondLast(ao); cur != nil && prev != nil {
		res.Increasing = *cur > *prev
	}
	return res
}
