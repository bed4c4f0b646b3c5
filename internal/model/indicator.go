package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// FloatSeries is an indicator series aligned 1:1 with the input bars.
// Warm-up positions hold NaN, which marshals as JSON null.
type FloatSeries []float64

func (s FloatSeries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf.WriteString("null")
		} else {
			buf.Write(strconv.AppendFloat(nil, v, 'g', -1, 64))
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (s *FloatSeries) UnmarshalJSON(b []byte) error {
	var raw []*float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(FloatSeries, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *v
		}
	}
	*s = out
	return nil
}

// Family identifies one indicator family contributing to the aggregate signal.
type Family string

const (
	FamilyRSI       Family = "rsi"
	FamilyMACD      Family = "macd"
	FamilyEMA       Family = "ema"
	FamilySMA       Family = "sma"
	FamilyBollinger Family = "bollinger"
	FamilyVolume    Family = "volume"
	FamilyStochRSI  Family = "stoch_rsi"
	FamilyAO        Family = "awesome_oscillator"
	FamilyMFI       Family = "mfi"
)

// Families returns all indicator families in their canonical evaluation order.
func Families() []Family {
	return []Family{
		FamilyRSI, FamilyMACD, FamilyEMA, FamilySMA, FamilyBollinger,
		FamilyVolume, FamilyStochRSI, FamilyAO, FamilyMFI,
	}
}

// RSIResult holds the Wilder RSI output. Value is nil until the warm-up
// window is filled; Series is aligned 1:1 with the input bars with NaN in
// warm-up positions.
type RSIResult struct {
	Value  *float64    `json:"value,omitempty"`
	Series FloatSeries `json:"series,omitempty"`
}

// MACDResult holds the MACD line, signal line and histogram, plus the
// crossover flags derived from the two most recent points.
type MACDResult struct {
	MACD         *float64    `json:"macd,omitempty"`
	Signal       *float64    `json:"signal,omitempty"`
	Histogram    *float64    `json:"histogram,omitempty"`
	BullishCross bool        `json:"bullish_crossover"`
	BearishCross bool        `json:"bearish_crossover"`
	MACDSeries   FloatSeries `json:"macd_series,omitempty"`
	SignalSeries FloatSeries `json:"signal_series,omitempty"`
	HistSeries   FloatSeries `json:"histogram_series,omitempty"`
}

// EMAResult holds the fast/slow exponential moving averages.
type EMAResult struct {
	Fast         *float64    `json:"ema_9,omitempty"`
	Slow         *float64    `json:"ema_21,omitempty"`
	BullishCross bool        `json:"bullish_crossover"`
	BearishCross bool        `json:"bearish_crossover"`
	FastSeries   FloatSeries `json:"ema_9_series,omitempty"`
	SlowSeries   FloatSeries `json:"ema_21_series,omitempty"`
}

// SMAResult holds the long-horizon simple moving averages. The cross flags
// are a static level comparison of sma_50 against sma_200, not an
// edge-triggered crossing.
type SMAResult struct {
	SMA50        *float64    `json:"sma_50,omitempty"`
	SMA200       *float64    `json:"sma_200,omitempty"`
	GoldenCross  bool        `json:"golden_cross"`
	DeathCross   bool        `json:"death_cross"`
	SMA50Series  FloatSeries `json:"sma_50_series,omitempty"`
	SMA200Series FloatSeries `json:"sma_200_series,omitempty"`
}

// BollingerResult holds the band levels, breakout flags against the last
// close, and the volatility squeeze flag.
type BollingerResult struct {
	Upper         *float64    `json:"upper,omitempty"`
	Middle        *float64    `json:"middle,omitempty"`
	Lower         *float64    `json:"lower,omitempty"`
	BreakoutUpper bool        `json:"breakout_upper"`
	BreakoutLower bool        `json:"breakout_lower"`
	Squeeze       bool        `json:"squeeze"`
	UpperSeries   FloatSeries `json:"upper_series,omitempty"`
	MiddleSeries  FloatSeries `json:"middle_series,omitempty"`
	LowerSeries   FloatSeries `json:"lower_series,omitempty"`
}

// VolumeResult holds the current volume, its moving average and their ratio.
type VolumeResult struct {
	Current      *float64 `json:"current,omitempty"`
	Average      *float64 `json:"average,omitempty"`
	Ratio        *float64 `json:"ratio,omitempty"`
	AboveAverage bool     `json:"above_average"`
}

// StochRSIResult holds the smoothed stochastic RSI lines on the 0..1 scale.
type StochRSIResult struct {
	K            *float64 `json:"k,omitempty"`
	D            *float64 `json:"d,omitempty"`
	Overbought   bool     `json:"overbought"`
	Oversold     bool     `json:"oversold"`
	BullishCross bool     `json:"bullish_crossover"`
	BearishCross bool     `json:"bearish_crossover"`
}

// AOResult holds the Awesome Oscillator value and its momentum direction.
type AOResult struct {
	Value      *float64    `json:"value,omitempty"`
	Increasing bool        `json:"increasing"`
	Series     FloatSeries `json:"series,omitempty"`
}

// MFIResult holds the Money Flow Index value.
type MFIResult struct {
	Value      *float64    `json:"value,omitempty"`
	Overbought bool        `json:"overbought"`
	Oversold   bool        `json:"oversold"`
	Series     FloatSeries `json:"series,omitempty"`
}

// IndicatorBundle is the full output of one calculator pass over a series.
// Every field a family could not compute from the available history is nil;
// a partially filled bundle is normal for short series.
type IndicatorBundle struct {
	RSI       RSIResult       `json:"rsi"`
	MACD      MACDResult      `json:"macd"`
	EMA       EMAResult       `json:"ema"`
	SMA       SMAResult       `json:"sma"`
	Bollinger BollingerResult `json:"bollinger"`
	Volume    VolumeResult    `json:"volume"`
	StochRSI  StochRSIResult  `json:"stoch_rsi"`
	AO        AOResult        `json:"awesome_oscillator"`
	MFI       MFIResult       `json:"mfi"`
}
