// Package dto defines the wire format of Finnhub responses.
package dto

// StockSymbol is one element of the /stock/symbol response array.
type StockSymbol struct {
	Currency      string `json:"currency"`
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Figi          string `json:"figi"`
	Mic           string `json:"mic"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

// Quote is the /quote response. Only the current price is read.
type Quote struct {
	Current float64 `json:"c"`
}
