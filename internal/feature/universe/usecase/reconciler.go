// Package usecase implements the stock universe reconciliation and listing.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mock_trader/internal/feature/universe/domain"
	"mock_trader/internal/feature/universe/domain/entity"
)

// BatchSize bounds every read and write against the universe store.
const BatchSize = 100

// ErrExchangeRequired is returned when Sync is called without a market code.
var ErrExchangeRequired = errors.New("exchange is required")

// MarketDataClient fetches the symbol snapshot of an exchange.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (platform).
type MarketDataClient interface {
	FetchSymbols(ctx context.Context, exchange string) ([]entity.SymbolRecord, error)
}

// UniverseStore abstracts the batched persistence of universe entries.
type UniverseStore interface {
	// FindByTickers returns the stored rows whose ticker is in tickers.
	FindByTickers(ctx context.Context, tickers []string) ([]entity.StoredEntry, error)
	// UpsertBatch writes entries, updating rows that share a stock_ticker.
	UpsertBatch(ctx context.Context, entries []entity.UniverseEntry) error
	// InsertBatch inserts entries as new rows.
	InsertBatch(ctx context.Context, entries []entity.UniverseEntry) error
}

// RunOutcome summarizes one reconciliation run.
type RunOutcome struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Reconciler diffs the market data snapshot against the universe store.
type Reconciler struct {
	market   MarketDataClient
	store    UniverseStore
	exchange string
	now      func() time.Time
}

// NewReconciler creates a Reconciler bound to the configured exchange.
func NewReconciler(market MarketDataClient, store UniverseStore, exchange string) *Reconciler {
	return &Reconciler{
		market:   market,
		store:    store,
		exchange: exchange,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run reconciles the configured exchange and logs the result.
// It is the entry point registered with the scheduler.
func (r *Reconciler) Run(ctx context.Context) error {
	slog.Info("[SCHEDULED JOB] stock universe sync started", "exchange", r.exchange)

	out, err := r.Sync(ctx, r.exchange)
	if err != nil {
		slog.Error("[SCHEDULED JOB] stock universe sync failed",
			"exchange", r.exchange,
			"kind", domain.Kind(err),
			"inserted", out.Inserted,
			"updated", out.Updated,
			"error", err,
		)
		return err
	}

	slog.Info("[SCHEDULED JOB] stock universe sync completed",
		"exchange", r.exchange,
		"inserted", out.Inserted,
		"updated", out.Updated,
		"skipped", out.Skipped,
	)
	return nil
}

// Sync fetches the snapshot for exchange and brings the universe store in
// line with it. On a write failure the outcome counts only committed batches.
func (r *Reconciler) Sync(ctx context.Context, exchange string) (RunOutcome, error) {
	var out RunOutcome
	if exchange == "" {
		return out, &domain.DataError{Reason: "no exchange configured", Err: ErrExchangeRequired}
	}

	records, err := r.market.FetchSymbols(ctx, exchange)
	if err != nil {
		return out, err
	}
	if len(records) == 0 {
		return out, &domain.DataError{Reason: "empty symbol snapshot", Err: domain.ErrEmptySnapshot}
	}

	records = uniqueRecords(records)
	if len(records) == 0 {
		return out, &domain.DataError{Reason: "snapshot has no symbols", Err: domain.ErrEmptySnapshot}
	}
	tickers := make([]string, 0, len(records))
	for _, rec := range records {
		tickers = append(tickers, rec.Symbol)
	}

	existing, err := r.loadExisting(ctx, tickers)
	if err != nil {
		return out, err
	}

	inserts, updates, skipped := classify(records, existing, exchange, r.now())
	out.Skipped = skipped

	for i, batch := range chunk(updates, BatchSize) {
		if err := r.store.UpsertBatch(ctx, batch); err != nil {
			return out, &domain.PersistenceError{Op: "update", Batch: i, Err: err}
		}
		out.Updated += len(batch)
	}
	if len(updates) > 0 {
		slog.Info("[SCHEDULED JOB] updated stock records with changes", "count", out.Updated)
	}

	for i, batch := range chunk(inserts, BatchSize) {
		if err := r.store.InsertBatch(ctx, batch); err != nil {
			return out, &domain.PersistenceError{Op: "insert", Batch: i, Err: err}
		}
		out.Inserted += len(batch)
	}
	if len(inserts) > 0 {
		slog.Info("[SCHEDULED JOB] added new stock records", "count", out.Inserted)
	}

	return out, nil
}

// loadExisting reads the stored rows for tickers in BatchSize chunks.
func (r *Reconciler) loadExisting(ctx context.Context, tickers []string) (map[string]entity.StoredEntry, error) {
	existing := make(map[string]entity.StoredEntry, len(tickers))
	for i, batch := range chunk(tickers, BatchSize) {
		rows, err := r.store.FindByTickers(ctx, batch)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "read", Batch: i, Err: err}
		}
		for _, row := range rows {
			existing[row.StockTicker] = row
		}
	}
	return existing, nil
}

// classify splits records into inserts and updates against existing.
// Records whose stored row already matches are counted as skipped.
func classify(records []entity.SymbolRecord, existing map[string]entity.StoredEntry, exchange string, now time.Time) (inserts, updates []entity.UniverseEntry, skipped int) {
	for _, rec := range records {
		candidate := entity.UniverseEntry{
			StockTicker: rec.Symbol,
			StockName:   rec.Description,
			Currency:    rec.Currency,
			Exchange:    exchange,
			IsActive:    true,
			UpdatedAt:   now,
		}

		stored, ok := existing[rec.Symbol]
		switch {
		case !ok:
			candidate.CreatedAt = now
			inserts = append(inserts, candidate)
		case !stored.Matches(candidate):
			updates = append(updates, candidate)
		default:
			skipped++
		}
	}
	return inserts, updates, skipped
}

// uniqueRecords drops records without a symbol and keeps the first
// occurrence of each ticker, preserving feed order.
func uniqueRecords(records []entity.SymbolRecord) []entity.SymbolRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]entity.SymbolRecord, 0, len(records))
	for _, rec := range records {
		if rec.Symbol == "" {
			continue
		}
		if _, dup := seen[rec.Symbol]; dup {
			continue
		}
		seen[rec.Symbol] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func chunk[T any](items []T, size int) [][]T {
	var batches [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}
