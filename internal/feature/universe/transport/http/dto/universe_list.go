// Package dto defines data transfer objects for the universe HTTP API.
package dto

// UniverseItem represents one active stock in the API response.
type UniverseItem struct {
	Ticker   string `json:"stock_ticker"`
	Name     string `json:"stock_name"`
	Currency string `json:"currency"`
	Exchange string `json:"exchange"`
}

// UniverseList is the response body of GET /universe.
type UniverseList struct {
	Exchange string         `json:"exchange"`
	Count    int            `json:"count"`
	Items    []UniverseItem `json:"items"`
}
