package entity

// SymbolRecord is one tradable instrument as reported by the market data API.
// It is transient and re-fetched on every run.
type SymbolRecord struct {
	Symbol      string
	Description string
	Currency    string
}
