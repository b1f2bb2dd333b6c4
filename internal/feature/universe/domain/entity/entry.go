// Package entity defines the domain models for the universe feature.
package entity

import "time"

// UniverseEntry is a row of the Stock_Universe table.
// StockTicker is unique across the store.
type UniverseEntry struct {
	StockTicker string
	StockName   string
	Currency    string
	Exchange    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StoredEntry is the projection read back from the store when diffing.
// Fields are nullable so that a missing column value can be detected
// instead of silently comparing as a zero value.
type StoredEntry struct {
	StockTicker string
	StockName   *string
	Currency    *string
	Exchange    *string
	IsActive    *bool
}

// Matches reports whether the stored row already carries the comparable
// fields of candidate. Any missing stored field counts as a mismatch.
func (s StoredEntry) Matches(candidate UniverseEntry) bool {
	if s.StockName == nil || s.Currency == nil || s.Exchange == nil || s.IsActive == nil {
		return false
	}
	return *s.StockName == candidate.StockName &&
		*s.Currency == candidate.Currency &&
		*s.Exchange == candidate.Exchange &&
		*s.IsActive == candidate.IsActive
}
