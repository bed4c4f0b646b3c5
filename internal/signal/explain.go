package signal

import (
	"fmt"
	"strings"

	"stock-signals/internal/model"
)

// buildExplanation assembles short per-family fragments into the rationale
// string. Fragments are advisory only and never feed back into the signal.
// A family that abstained contributes no fragment, so the text cannot
// claim a crossover from a family that did not vote.
func buildExplanation(b model.IndicatorBundle, votes map[model.Family]model.Vote) string {
	var parts []string

	if _, ok := votes[model.FamilyRSI]; ok && b.RSI.Value != nil {
		v := *b.RSI.Value
		switch {
		case v < 30:
			parts = append(parts, fmt.Sprintf("RSI oversold (%.1f)", v))
		case v > 70:
			parts = append(parts, fmt.Sprintf("RSI overbought (%.1f)", v))
		default:
			parts = append(parts, fmt.Sprintf("RSI neutral (%.1f)", v))
		}
	}

	if _, ok := votes[model.FamilyMACD]; ok {
		switch {
		case b.MACD.BullishCross:
			parts = append(parts, "MACD bullish crossover")
		case b.MACD.BearishCross:
			parts = append(parts, "MACD bearish crossover")
		case b.MACD.MACD != nil && b.MACD.Signal != nil && *b.MACD.MACD > *b.MACD.Signal:
			parts = append(parts, "MACD above signal line")
		case b.MACD.MACD != nil && b.MACD.Signal != nil:
			parts = append(parts, "MACD below signal line")
		}
	}

	if _, ok := votes[model.FamilyEMA]; ok {
		switch {
		case b.EMA.BullishCross:
			parts = append(parts, "EMA 9/21 bullish crossover")
		case b.EMA.BearishCross:
			parts = append(parts, "EMA 9/21 bearish crossover")
		}
	}

	if _, ok := votes[model.FamilyStochRSI]; ok {
		switch {
		case b.StochRSI.BullishCross:
			parts = append(parts, "Stoch RSI bullish crossover")
		case b.StochRSI.BearishCross:
			parts = append(parts, "Stoch RSI bearish crossover")
		case b.StochRSI.Oversold:
			parts = append(parts, "Stoch RSI oversold")
		case b.StochRSI.Overbought:
			parts = append(parts, "Stoch RSI overbought")
		}
	}

	if _, ok := votes[model.FamilyAO]; ok && b.AO.Value != nil {
		switch {
		case *b.AO.Value > 0 && b.AO.Increasing:
			parts = append(parts, "AO bullish momentum")
		case *b.AO.Value < 0 && !b.AO.Increasing:
			parts = append(parts, "AO bearish momentum")
		}
	}

	if _, ok := votes[model.FamilyMFI]; ok {
		switch {
		case b.MFI.Oversold:
			parts = append(parts, "MFI oversold")
		case b.MFI.Overbought:
			parts = append(parts, "MFI overbought")
		}
	}

	if _, ok := votes[model.FamilySMA]; ok {
		switch {
		case b.SMA.GoldenCross:
			parts = append(parts, "Golden cross pattern")
		case b.SMA.DeathCross:
			parts = append(parts, "Death cross pattern")
		}
	}

	if len(parts) == 0 {
		return "Mixed technical signals"
	}
	return strings.Join(parts, " | ")
}
