package model

// Instrument represents one listed stock in the symbol catalog.
type Instrument struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	NSE    string `json:"nse"`
	BSE    string `json:"bse"`
}
