package adapters

import (
	"time"

	"mock_trader/internal/feature/universe/domain/entity"
)

// UniverseModel is the GORM model for the Stock_Universe table.
// The comparable columns are nullable so rows written by other tools
// surface as missing values instead of zero values.
type UniverseModel struct {
	ID          uint    `gorm:"primaryKey"`
	StockTicker string  `gorm:"column:stock_ticker;uniqueIndex;size:32;not null"`
	StockName   *string `gorm:"column:stock_name;size:255"`
	Currency    *string `gorm:"column:currency;size:16"`
	Exchange    *string `gorm:"column:exchange;index;size:16"`
	IsActive    *bool   `gorm:"column:is_active;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM.
func (UniverseModel) TableName() string {
	return "Stock_Universe"
}

// ToStored projects the row onto the nullable comparison view.
func (m *UniverseModel) ToStored() entity.StoredEntry {
	return entity.StoredEntry{
		StockTicker: m.StockTicker,
		StockName:   m.StockName,
		Currency:    m.Currency,
		Exchange:    m.Exchange,
		IsActive:    m.IsActive,
	}
}

// ToEntity converts the row to a domain entry; NULL columns become zero values.
func (m *UniverseModel) ToEntity() entity.UniverseEntry {
	e := entity.UniverseEntry{
		StockTicker: m.StockTicker,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.StockName != nil {
		e.StockName = *m.StockName
	}
	if m.Currency != nil {
		e.Currency = *m.Currency
	}
	if m.Exchange != nil {
		e.Exchange = *m.Exchange
	}
	if m.IsActive != nil {
		e.IsActive = *m.IsActive
	}
	return e
}

// UniverseModelFromEntity converts a domain entry to a GORM model.
func UniverseModelFromEntity(e entity.UniverseEntry) UniverseModel {
	name, currency, exchange, active := e.StockName, e.Currency, e.Exchange, e.IsActive
	return UniverseModel{
		StockTicker: e.StockTicker,
		StockName:   &name,
		Currency:    &currency,
		Exchange:    &exchange,
		IsActive:    &active,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
