package indicator

import (
	"math"

	"stock-signals/internal/model"
)

// calcStochRSI applies a stochastic oscillator to the RSI series. Raw
// %K = (RSI − min) / (max − min) over the stoch window, then both lines
// are SMA-smoothed. Values stay on the 0..1 scale.
func (c *Calculator) calcStochRSI(closes []float64) model.StochRSIResult {
	rsi := rsiSeries(closes, c.cfg.RSIPeriod)
	lo := rollingMin(rsi, c.cfg.StochPeriod)
	hi := rollingMax(rsi, c.cfg.StochPeriod)

	raw := nanSeries(len(closes))
	for i := range closes {
		if math.IsNaN(rsi[i]) || math.IsNaN(lo[i]) || math.IsNaN(hi[i]) {
			continue
		}
		if hi[i] == lo[i] {
			continue // flat RSI window, undefined
		}
		raw[i] = (rsi[i] - lo[i]) / (hi[i] - lo[i])
	}

	k := smaSeries(raw, c.cfg.StochSmoothK)
	d := smaSeries(k, c.cfg.StochSmoothD)

	res := model.StochRSIResult{
		K:            last(k),
		D:            last(d),
		BullishCross: crossedAbove(k, d),
		BearishCross: crossedBelow(k, d),
	}
	if res.K != nil {
		res.Overbought = *res.K > 0.8
		res.Oversold = *res.K < 0.2
	}
	return res
}
