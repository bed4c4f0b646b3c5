// Package indicator computes technical indicators over daily bar series.
// All series outputs are aligned 1:1 with the input bars; positions inside
// an indicator's warm-up window hold NaN. A series too short for a family
// yields nil current values for that family, never an error.
package indicator

import (
	"stock-signals/internal/model"
)

// Config holds the lookback windows for every indicator family.
type Config struct {
	RSIPeriod int

	MACDFast   int
	MACDSlow   int
	MACDSignal int

	EMAFast int
	EMASlow int

	SMAShort int
	SMALong  int

	BollingerPeriod  int
	BollingerStdDev  float64
	SqueezeThreshold float64

	VolumePeriod int

	StochPeriod  int
	StochSmoothK int
	StochSmoothD int

	AOFast int
	AOSlow int

	MFIPeriod int
}

// DefaultConfig returns the standard daily-chart parameter set.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:        14,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		EMAFast:          9,
		EMASlow:          21,
		SMAShort:         50,
		SMALong:          200,
		BollingerPeriod:  20,
		BollingerStdDev:  2.0,
		SqueezeThreshold: 0.10,
		VolumePeriod:     20,
		StochPeriod:      14,
		StochSmoothK:     3,
		StochSmoothD:     3,
		AOFast:           5,
		AOSlow:           34,
		MFIPeriod:        14,
	}
}

// Calculator computes the full indicator bundle for a bar series.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with the given config.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate runs every indicator family over the series and assembles the
// bundle. Families without enough history come back with nil fields.
func (c *Calculator) Calculate(series model.Series) model.IndicatorBundle {
	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()

	return model.IndicatorBundle{
		RSI:       c.calcRSI(closes),
		MACD:      c.calcMACD(closes),
		EMA:       c.calcEMA(closes),
		SMA:       c.calcSMA(closes),
		Bollinger: c.calcBollinger(closes),
		Volume:    c.calcVolume(volumes),
		StochRSI:  c.calcStochRSI(closes),
		AO:        c.calcAO(highs, lows),
		MFI:       c.calcMFI(highs, lows, closes, volumes),
	}
}
