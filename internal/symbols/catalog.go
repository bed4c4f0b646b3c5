// Package symbols holds a static catalog of popular NSE/BSE stocks for
// autocomplete and symbol normalization.
package symbols

import (
	"sort"
	"strings"

	"stock-signals/internal/model"
)

// catalog maps the base trading symbol to company metadata. Kept small on
// purpose: it backs autocomplete, not universe selection.
var catalog = map[string]model.Instrument{
	// Technology
	"TCS":     {Symbol: "TCS", Name: "Tata Consultancy Services", NSE: "TCS.NS", BSE: "TCS.BO"},
	"INFY":    {Symbol: "INFY", Name: "Infosys Limited", NSE: "INFY.NS", BSE: "INFY.BO"},
	"HCLTECH": {Symbol: "HCLTECH", Name: "HCL Technologies", NSE: "HCLTECH.NS", BSE: "HCLTECH.BO"},
	"WIPRO":   {Symbol: "WIPRO", Name: "Wipro Limited", NSE: "WIPRO.NS", BSE: "WIPRO.BO"},
	"TECHM":   {Symbol: "TECHM", Name: "Tech Mahindra", NSE: "TECHM.NS", BSE: "TECHM.BO"},

	// Banks
	"HDFCBANK":  {Symbol: "HDFCBANK", Name: "HDFC Bank", NSE: "HDFCBANK.NS", BSE: "HDFCBANK.BO"},
	"ICICIBANK": {Symbol: "ICICIBANK", Name: "ICICI Bank", NSE: "ICICIBANK.NS", BSE: "ICICIBANK.BO"},
	"SBIN":      {Symbol: "SBIN", Name: "State Bank of India", NSE: "SBIN.NS", BSE: "SBIN.BO"},
	"AXISBANK":  {Symbol: "AXISBANK", Name: "Axis Bank", NSE: "AXISBANK.NS", BSE: "AXISBANK.BO"},
	"KOTAKBANK": {Symbol: "KOTAKBANK", Name: "Kotak Mahindra Bank", NSE: "KOTAKBANK.NS", BSE: "KOTAKBANK.BO"},

	// FMCG
	"HINDUNILVR": {Symbol: "HINDUNILVR", Name: "Hindustan Unilever", NSE: "HINDUNILVR.NS", BSE: "HINDUNILVR.BO"},
	"ITC":        {Symbol: "ITC", Name: "ITC Limited", NSE: "ITC.NS", BSE: "ITC.BO"},
	"NESTLEIND":  {Symbol: "NESTLEIND", Name: "Nestle India", NSE: "NESTLEIND.NS", BSE: "NESTLEIND.BO"},
	"BRITANNIA":  {Symbol: "BRITANNIA", Name: "Britannia Industries", NSE: "BRITANNIA.NS", BSE: "BRITANNIA.BO"},
	"MARICO":     {Symbol: "MARICO", Name: "Marico Limited", NSE: "MARICO.NS", BSE: "MARICO.BO"},

	// Energy & Oil
	"RELIANCE":   {Symbol: "RELIANCE", Name: "Reliance Industries", NSE: "RELIANCE.NS", BSE: "RELIANCE.BO"},
	"ONGC":       {Symbol: "ONGC", Name: "Oil & Natural Gas Corp", NSE: "ONGC.NS", BSE: "ONGC.BO"},
	"BPCL":       {Symbol: "BPCL", Name: "Bharat Petroleum", NSE: "BPCL.NS", BSE: "BPCL.BO"},
	"IOC":        {Symbol: "IOC", Name: "Indian Oil Corporation", NSE: "IOC.NS", BSE: "IOC.BO"},
	"ADANIGREEN": {Symbol: "ADANIGREEN", Name: "Adani Green Energy", NSE: "ADANIGREEN.NS", BSE: "ADANIGREEN.BO"},

	// Automobiles
	"MARUTI":     {Symbol: "MARUTI", Name: "Maruti Suzuki", NSE: "MARUTI.NS", BSE: "MARUTI.BO"},
	"TATAMOTORS": {Symbol: "TATAMOTORS", Name: "Tata Motors", NSE: "TATAMOTORS.NS", BSE: "TATAMOTORS.BO"},
	"M&M":        {Symbol: "M&M", Name: "Mahindra & Mahindra", NSE: "M&M.NS", BSE: "M&M.BO"},
	"BAJAJ-AUTO": {Symbol: "BAJAJ-AUTO", Name: "Bajaj Auto", NSE: "BAJAJ-AUTO.NS", BSE: "BAJAJ-AUTO.BO"},
	"HEROMOTOCO": {Symbol: "HEROMOTOCO", Name: "Hero MotoCorp", NSE: "HEROMOTOCO.NS", BSE: "HEROMOTOCO.BO"},

	// Pharmaceuticals
	"DRREDDY":   {Symbol: "DRREDDY", Name: "Dr Reddys Laboratories", NSE: "DRREDDY.NS", BSE: "DRREDDY.BO"},
	"SUNPHARMA": {Symbol: "SUNPHARMA", Name: "Sun Pharmaceutical", NSE: "SUNPHARMA.NS", BSE: "SUNPHARMA.BO"},
	"CIPLA":     {Symbol: "CIPLA", Name: "Cipla Limited", NSE: "CIPLA.NS", BSE: "CIPLA.BO"},
	"DIVISLAB":  {Symbol: "DIVISLAB", Name: "Divis Laboratories", NSE: "DIVISLAB.NS", BSE: "DIVISLAB.BO"},
	"BIOCON":    {Symbol: "BIOCON", Name: "Biocon Limited", NSE: "BIOCON.NS", BSE: "BIOCON.BO"},

	// Metals & Mining
	"TATASTEEL": {Symbol: "TATASTEEL", Name: "Tata Steel", NSE: "TATASTEEL.NS", BSE: "TATASTEEL.BO"},
	"HINDALCO":  {Symbol: "HINDALCO", Name: "Hindalco Industries", NSE: "HINDALCO.NS", BSE: "HINDALCO.BO"},
	"COALINDIA": {Symbol: "COALINDIA", Name: "Coal India", NSE: "COALINDIA.NS", BSE: "COALINDIA.BO"},
	"VEDL":      {Symbol: "VEDL", Name: "Vedanta Limited", NSE: "VEDL.NS", BSE: "VEDL.BO"},
	"SAIL":      {Symbol: "SAIL", Name: "Steel Authority of India", NSE: "SAIL.NS", BSE: "SAIL.BO"},

	// Telecom
	"BHARTIARTL": {Symbol: "BHARTIARTL", Name: "Bharti Airtel", NSE: "BHARTIARTL.NS", BSE: "BHARTIARTL.BO"},
	"IDEA":       {Symbol: "IDEA", Name: "Vodafone Idea", NSE: "IDEA.NS", BSE: "IDEA.BO"},

	// Infrastructure
	"LT":         {Symbol: "LT", Name: "Larsen & Toubro", NSE: "LT.NS", BSE: "LT.BO"},
	"ULTRACEMCO": {Symbol: "ULTRACEMCO", Name: "UltraTech Cement", NSE: "ULTRACEMCO.NS", BSE: "ULTRACEMCO.BO"},
	"GRASIM":     {Symbol: "GRASIM", Name: "Grasim Industries", NSE: "GRASIM.NS", BSE: "GRASIM.BO"},
	"ADANIPORTS": {Symbol: "ADANIPORTS", Name: "Adani Ports", NSE: "ADANIPORTS.NS", BSE: "ADANIPORTS.BO"},

	// Financial Services
	"BAJFINANCE": {Symbol: "BAJFINANCE", Name: "Bajaj Finance", NSE: "BAJFINANCE.NS", BSE: "BAJFINANCE.BO"},
	"HDFCLIFE":   {Symbol: "HDFCLIFE", Name: "HDFC Life Insurance", NSE: "HDFCLIFE.NS", BSE: "HDFCLIFE.BO"},
	"SBILIFE":    {Symbol: "SBILIFE", Name: "SBI Life Insurance", NSE: "SBILIFE.NS", BSE: "SBILIFE.BO"},
	"ICICIGI":    {Symbol: "ICICIGI", Name: "ICICI General Insurance", NSE: "ICICIGI.NS", BSE: "ICICIGI.BO"},
}

// Suggestion is one autocomplete hit.
type Suggestion struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	NSESymbol string `json:"nse_symbol"`
	BSESymbol string `json:"bse_symbol"`
	MatchType string `json:"match_type"` // "symbol" or "name"
}

const (
	minQueryLen    = 2
	maxSuggestions = 10
)

// Search returns ranked suggestions for a query: substring matches on the
// symbol sort before matches on the company name, alphabetical within each
// group. Queries shorter than two characters return nothing.
func Search(query string) []Suggestion {
	q := strings.ToUpper(strings.TrimSpace(query))
	if len(q) < minQueryLen {
		return nil
	}

	var out []Suggestion
	for sym, inst := range catalog {
		switch {
		case strings.Contains(sym, q):
			out = append(out, suggestion(inst, "symbol"))
		case strings.Contains(strings.ToUpper(inst.Name), q):
			out = append(out, suggestion(inst, "name"))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchType != out[j].MatchType {
			return out[i].MatchType == "symbol"
		}
		return out[i].Symbol < out[j].Symbol
	})

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func suggestion(inst model.Instrument, matchType string) Suggestion {
	return Suggestion{
		Symbol:    inst.Symbol,
		Name:      inst.Name,
		NSESymbol: inst.NSE,
		BSESymbol: inst.BSE,
		MatchType: matchType,
	}
}

// Lookup returns catalog info for a symbol, accepting .NS/.BO suffixes.
func Lookup(symbol string) (model.Instrument, bool) {
	inst, ok := catalog[Normalize(symbol)]
	return inst, ok
}

// Normalize uppercases a symbol and strips any exchange suffix.
func Normalize(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimSuffix(s, ".NS")
	s = strings.TrimSuffix(s, ".BO")
	return s
}

// Exchange reports which exchange a raw symbol targets: .BO means BSE,
// anything else defaults to NSE.
func Exchange(symbol string) string {
	if strings.HasSuffix(strings.ToUpper(strings.TrimSpace(symbol)), ".BO") {
		return "BSE"
	}
	return "NSE"
}

// All returns every catalog entry sorted by symbol.
func All() []model.Instrument {
	out := make([]model.Instrument, 0, len(catalog))
	for _, inst := range catalog {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
