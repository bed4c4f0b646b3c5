package signal

import "stock-signals/internal/model"

// Per-family vote functions. Each returns the family's vote and whether it
// participated; a family with missing required fields abstains, which is
// different from voting HOLD. Rules are priority-ordered, first match wins.

func voteRSI(r model.RSIResult) (model.Vote, bool) {
	if r.Value == nil {
		return model.Hold, false
	}
	v := *r.Value
	switch {
	case v < 30:
		return model.Buy, true
	case v > 70:
		return model.Sell, true
	case v < 40:
		return model.WeakBuy, true
	case v > 60:
		return model.WeakSell, true
	}
	return model.Hold, true
}

func voteMACD(r model.MACDResult) (model.Vote, bool) {
	if r.MACD == nil || r.Signal == nil {
		return model.Hold, false
	}
	switch {
	case r.BullishCross:
		return model.Buy, true
	case r.BearishCross:
		return model.Sell, true
	case r.Histogram != nil && *r.MACD > *r.Signal && *r.Histogram > 0:
		return model.WeakBuy, true
	case r.Histogram != nil && *r.MACD < *r.Signal && *r.Histogram < 0:
		return model.WeakSell, true
	}
	return model.Hold, true
}

func voteEMA(r model.EMAResult) (model.Vote, bool) {
	if r.Fast == nil || r.Slow == nil {
		return model.Hold, false
	}
	switch {
	case r.BullishCross:
		return model.Buy, true
	case r.BearishCross:
		return model.Sell, true
	case *r.Fast > *r.Slow:
		return model.WeakBuy, true
	case *r.Fast < *r.Slow:
		return model.WeakSell, true
	}
	return model.Hold, true
}

func voteSMA(r model.SMAResult, series model.Series) (model.Vote, bool) {
	price, ok := series.LastClose()
	if !ok || r.SMA50 == nil || r.SMA200 == nil {
		return model.Hold, false
	}
	switch {
	case r.GoldenCross && price > *r.SMA50:
		return model.Buy, true
	case r.DeathCross && price < *r.SMA50:
		return model.Sell, true
	case price > *r.SMA50 && *r.SMA50 > *r.SMA200:
		return model.WeakBuy, true
	case price < *r.SMA50 && *r.SMA50 < *r.SMA200:
		return model.WeakSell, true
	}
	return model.Hold, true
}

func voteBollinger(r model.BollingerResult, series model.Series) (model.Vote, bool) {
	price, ok := series.LastClose()
	if !ok || r.Upper == nil || r.Middle == nil || r.Lower == nil {
		return model.Hold, false
	}
	switch {
	case r.BreakoutUpper:
		return model.Buy, true
	case r.BreakoutLower:
		return model.Sell, true
	}
	width := *r.Upper - *r.Lower
	if width == 0 {
		return model.Hold, true
	}
	position := (price - *r.Lower) / width
	switch {
	case position > 0.8: // near upper band, mean-reversion bias
		return model.WeakSell, true
	case position < 0.2:
		return model.WeakBuy, true
	}
	return model.Hold, true
}

func voteVolume(r model.VolumeResult) (model.Vote, bool) {
	if r.Current == nil || r.Average == nil || r.Ratio == nil {
		return model.Hold, false
	}
	if r.AboveAverage {
		switch {
		case *r.Ratio > 1.5:
			return model.Buy, true
		case *r.Ratio > 1.2:
			return model.WeakBuy, true
		}
	}
	return model.Hold, true
}

func voteStochRSI(r model.StochRSIResult) (model.Vote, bool) {
	if r.K == nil {
		return model.Hold, false
	}
	switch {
	case r.BullishCross:
		return model.Buy, true
	case r.BearishCross:
		return model.Sell, true
	case *r.K < 0.2:
		return model.Buy, true
	case *r.K > 0.8:
		return model.Sell, true
	case *r.K < 0.4:
		return model.WeakBuy, true
	case *r.K > 0.6:
		return model.WeakSell, true
	}
	return model.Hold, true
}

func voteAO(r model.AOResult) (model.Vote, bool) {
	if r.Value == nil {
		return model.Hold, false
	}
	v := *r.Value
	switch {
	case v > 0 && r.Increasing:
		return model.Buy, true
	case v < 0 && !r.Increasing:
		return model.Sell, true
	case v > 0:
		return model.WeakBuy, true
	case v < 0:
		return model.WeakSell, true
	}
	return model.Hold, true
}

func voteMFI(r model.MFIResult) (model.Vote, bool) {
	if r.Value == nil {
		return model.Hold, false
	}
	v := *r.Value
	switch {
	case v < 20:
		return model.Buy, true
	case v > 80:
		return model.Sell, true
	case v < 30:
		return model.WeakBuy, true
	case v > 70:
		return model.WeakSell, true
	}
	return model.Hold, true
}
