package indicator

import "stock-signals/internal/model"

// calcSMA computes the 50/200 moving averages. Golden/death cross is a
// static level comparison of the current values, not an edge-triggered
// crossing event.
func (c *Calculator) calcSMA(closes []float64) model.SMAResult {
	short := smaSeries(closes, c.cfg.SMAShort)
	long := smaSeries(closes, c.cfg.SMALong)

	res := model.SMAResult{
		SMA50:        last(short),
		SMA200:       last(long),
		SMA50Series:  short,
		SMA200Series: long,
	}
	if res.SMA50 != nil && res.SMA200 != nil {
		res.GoldenCross = *res.SMA50 > *res.SMA200
		res.DeathCross = *res.SMA50 < *res.SMA200
	}
	return res
}
