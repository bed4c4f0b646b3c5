package indicator

import "stock-signals/internal/model"

// calcEMA computes the fast/slow EMA pair used for short-horizon trend.
func (c *Calculator) calcEMA(closes []float64) model.EMAResult {
	fast := emaSeries(closes, c.cfg.EMAFast)
	slow := emaSeries(closes, c.cfg.EMASlow)

	return model.EMAResult{
		Fast:         last(fast),
		Slow:         last(slow),
		BullishCross: crossedAbove(fast, slow),
		BearishCross: crossedBelow(fast, slow),
		FastSeries:   fast,
		SlowSeries:   slow,
	}
}
