// Package signal turns an indicator bundle into a single weighted trading
// recommendation with a confidence score and human-readable rationale.
// Aggregation is a pure function of (bundle, series); any internal fault is
// converted into a safe HOLD result rather than surfaced to the caller.
package signal

import (
	"log"
	"math"
	"time"

	"stock-signals/internal/model"
)

// Weights are the fixed per-family voting weights. They intentionally do
// not sum to 1.0; the average is always renormalized over the weight of
// the families that actually voted.
var Weights = map[model.Family]float64{
	model.FamilyRSI:       0.20,
	model.FamilyMACD:      0.25,
	model.FamilyEMA:       0.20,
	model.FamilySMA:       0.15,
	model.FamilyBollinger: 0.15,
	model.FamilyVolume:    0.05,
	model.FamilyStochRSI:  0.15,
	model.FamilyAO:        0.10,
	model.FamilyMFI:       0.10,
}

const faultExplanation = "Error occurred while generating signal"

// Aggregate combines the per-family votes into the final recommendation.
// It never returns an error and never panics: a fault inside aggregation
// degrades to the safe default (HOLD, confidence 0, risk VERY_HIGH).
func Aggregate(bundle model.IndicatorBundle, series model.Series) (res model.SignalResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[signal] aggregation fault, returning safe default: %v", r)
			res = SafeDefault()
		}
	}()

	votes := collectVotes(bundle, series)

	weightedScore, totalWeight := 0.0, 0.0
	for fam, v := range votes {
		w := Weights[fam]
		weightedScore += float64(v) * w
		totalWeight += w
	}

	var avg float64
	if totalWeight > 0 {
		avg = weightedScore / totalWeight
	}

	confidence := math.Min(math.Abs(avg)*50, 100)
	if totalWeight == 0 {
		confidence = 0
	}

	return model.SignalResult{
		Signal:      signalFromAverage(avg, totalWeight),
		Confidence:  confidence,
		Votes:       votes,
		Explanation: buildExplanation(bundle, votes),
		Risk:        model.RiskFromConfidence(confidence),
		GeneratedAt: time.Now().UTC(),
	}
}

// SafeDefault is the degraded result returned on any internal fault.
func SafeDefault() model.SignalResult {
	return model.SignalResult{
		Signal:      model.Hold,
		Confidence:  0,
		Votes:       map[model.Family]model.Vote{},
		Explanation: faultExplanation,
		Risk:        model.RiskVeryHigh,
		GeneratedAt: time.Now().UTC(),
	}
}

// collectVotes runs every family's vote function in canonical order.
// Abstaining families are absent from the map.
func collectVotes(b model.IndicatorBundle, series model.Series) map[model.Family]model.Vote {
	votes := make(map[model.Family]model.Vote)
	for _, fam := range model.Families() {
		var v model.Vote
		var ok bool
		switch fam {
		case model.FamilyRSI:
			v, ok = voteRSI(b.RSI)
		case model.FamilyMACD:
			v, ok = voteMACD(b.MACD)
		case model.FamilyEMA:
			v, ok = voteEMA(b.EMA)
		case model.FamilySMA:
			v, ok = voteSMA(b.SMA, series)
		case model.FamilyBollinger:
			v, ok = voteBollinger(b.Bollinger, series)
		case model.FamilyVolume:
			v, ok = voteVolume(b.Volume)
		case model.FamilyStochRSI:
			v, ok = voteStochRSI(b.StochRSI)
		case model.FamilyAO:
			v, ok = voteAO(b.AO)
		case model.FamilyMFI:
			v, ok = voteMFI(b.MFI)
		}
		if ok {
			votes[fam] = v
		}
	}
	return votes
}

// signalFromAverage maps the renormalized average strength to the final
// signal. No participants means HOLD regardless of avg.
func signalFromAverage(avg, totalWeight float64) model.Vote {
	if totalWeight == 0 {
		return model.Hold
	}
	switch {
	case avg >= 1.5:
		return model.Buy
	case avg >= 0.5:
		return model.WeakBuy
	case avg <= -1.5:
		return model.Sell
	case avg <= -0.5:
		return model.WeakSell
	}
	return model.Hold
}
