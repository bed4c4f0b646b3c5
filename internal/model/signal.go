package model

import (
	"fmt"
	"time"
)

// Vote is one indicator family's directional opinion, or the final
// aggregate signal. Strengths run from -2 (SELL) to +2 (BUY).
type Vote int

const (
	Sell     Vote = -2
	WeakSell Vote = -1
	Hold     Vote = 0
	WeakBuy  Vote = 1
	Buy      Vote = 2
)

// String returns the wire form used in JSON payloads and stored rows.
func (v Vote) String() string {
	switch v {
	case Sell:
		return "SELL"
	case WeakSell:
		return "WEAK_SELL"
	case Hold:
		return "HOLD"
	case WeakBuy:
		return "WEAK_BUY"
	case Buy:
		return "BUY"
	}
	return "HOLD"
}

func (v Vote) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Vote) UnmarshalText(b []byte) error {
	switch string(b) {
	case "SELL":
		*v = Sell
	case "WEAK_SELL":
		*v = WeakSell
	case "HOLD":
		*v = Hold
	case "WEAK_BUY":
		*v = WeakBuy
	case "BUY":
		*v = Buy
	default:
		return fmt.Errorf("unknown vote %q", b)
	}
	return nil
}

// RiskLevel grades how much the aggregate should be trusted. It is derived
// from confidence alone: low confidence means high risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

// RiskFromConfidence maps a 0..100 confidence to a risk grade.
func RiskFromConfidence(confidence float64) RiskLevel {
	switch {
	case confidence >= 80:
		return RiskLow
	case confidence >= 60:
		return RiskMedium
	case confidence >= 40:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// SignalResult is the aggregate verdict for one symbol at one point in time.
// Votes holds only the families that participated; abstaining families are
// absent, not HOLD.
type SignalResult struct {
	Signal      Vote            `json:"signal"`
	Confidence  float64         `json:"confidence"`
	Votes       map[Family]Vote `json:"votes"`
	Explanation string          `json:"explanation"`
	Risk        RiskLevel       `json:"risk"`
	GeneratedAt time.Time       `json:"generated_at"`
}
