package model

import "time"

// Analysis is one persisted analysis row: the aggregate verdict plus the
// current indicator values the dashboard renders. Indicator fields mirror
// the bundle's optionality.
type Analysis struct {
	ID         int64     `json:"id,omitempty"`
	Symbol     string    `json:"symbol"`
	Exchange   string    `json:"exchange"`
	Price      float64   `json:"price"`
	Signal     Vote      `json:"signal"`
	Confidence float64   `json:"confidence"`
	Risk       RiskLevel `json:"risk"`

	RSI        *float64 `json:"rsi,omitempty"`
	MACD       *float64 `json:"macd,omitempty"`
	MACDSignal *float64 `json:"macd_signal,omitempty"`
	EMA9       *float64 `json:"ema_9,omitempty"`
	EMA21      *float64 `json:"ema_21,omitempty"`
	SMA50      *float64 `json:"sma_50,omitempty"`
	SMA200     *float64 `json:"sma_200,omitempty"`
	BBUpper    *float64 `json:"bb_upper,omitempty"`
	BBMiddle   *float64 `json:"bb_middle,omitempty"`
	BBLower    *float64 `json:"bb_lower,omitempty"`
	Volume     *float64 `json:"volume,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewAnalysis flattens a signal result and its bundle into a storable row.
func NewAnalysis(symbol, exchange string, price float64, res SignalResult, b IndicatorBundle) Analysis {
	return Analysis{
		Symbol:     symbol,
		Exchange:   exchange,
		Price:      price,
		Signal:     res.Signal,
		Confidence: res.Confidence,
		Risk:       res.Risk,
		RSI:        b.RSI.Value,
		MACD:       b.MACD.MACD,
		MACDSignal: b.MACD.Signal,
		EMA9:       b.EMA.Fast,
		EMA21:      b.EMA.Slow,
		SMA50:      b.SMA.SMA50,
		SMA200:     b.SMA.SMA200,
		BBUpper:    b.Bollinger.Upper,
		BBMiddle:   b.Bollinger.Middle,
		BBLower:    b.Bollinger.Lower,
		Volume:     b.Volume.Current,
		CreatedAt:  res.GeneratedAt,
	}
}
