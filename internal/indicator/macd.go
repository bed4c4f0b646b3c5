package indicator

import (
	"math"

	"stock-signals/internal/model"
)

// calcMACD computes the MACD line (fast EMA − slow EMA), its signal EMA and
// the histogram, plus crossover flags on the last two points.
func (c *Calculator) calcMACD(closes []float64) model.MACDResult {
	fast := emaSeries(closes, c.cfg.MACDFast)
	slow := emaSeries(closes, c.cfg.MACDSlow)

	macd := nanSeries(len(closes))
	for i := range closes {
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) {
			macd[i] = fast[i] - slow[i]
		}
	}

	signal := emaSeries(macd, c.cfg.MACDSignal)

	hist := nanSeries(len(closes))
	for i := range closes {
		if !math.IsNaN(macd[i]) && !math.IsNaN(signal[i]) {
			hist[i] = macd[i] - signal[i]
		}
	}

	return model.MACDResult{
		MACD:         last(macd),
		Signal:       last(signal),
		Histogram:    last(hist),
		BullishCross: crossedAbove(macd, signal),
		BearishCross: crossedBelow(macd, signal),
		MACDSeries:   macd,
		SignalSeries: signal,
		HistSeries:   hist,
	}
}
