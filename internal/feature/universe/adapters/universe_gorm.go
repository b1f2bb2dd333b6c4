// Package adapters はuniverseフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mock_trader/internal/feature/universe/domain/entity"
	"mock_trader/internal/feature/universe/usecase"
)

// universeGorm はUniverseStoreとUniverseListerのGORM実装です。
type universeGorm struct {
	db *gorm.DB
}

var (
	_ usecase.UniverseStore  = (*universeGorm)(nil)
	_ usecase.UniverseLister = (*universeGorm)(nil)
)

// NewUniverseRepository は指定されたDB接続でuniverseGormの新しいインスタンスを生成します。
func NewUniverseRepository(db *gorm.DB) *universeGorm {
	return &universeGorm{db: db}
}

// FindByTickers はtickersに含まれる銘柄の保存済み行を返します。
func (r *universeGorm) FindByTickers(ctx context.Context, tickers []string) ([]entity.StoredEntry, error) {
	if len(tickers) == 0 {
		return nil, nil
	}
	var rows []UniverseModel
	if err := r.db.WithContext(ctx).
		Select("stock_ticker", "stock_name", "currency", "exchange", "is_active").
		Where("stock_ticker IN ?", tickers).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.StoredEntry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToStored())
	}
	return out, nil
}

// UpsertBatch はstock_tickerが衝突した場合に比較対象カラムとupdated_atを更新します。
// created_atは既存の値を保持します。
func (r *universeGorm) UpsertBatch(ctx context.Context, entries []entity.UniverseEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := toModels(entries)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stock_ticker"}},
		DoUpdates: clause.AssignmentColumns([]string{"stock_name", "currency", "exchange", "is_active", "updated_at"}),
	}).Create(&rows).Error
}

// InsertBatch は新規銘柄を1つの文でまとめて挿入します。
func (r *universeGorm) InsertBatch(ctx context.Context, entries []entity.UniverseEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := toModels(entries)
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListActive はexchangeのアクティブな銘柄をティッカー順で返します。
func (r *universeGorm) ListActive(ctx context.Context, exchange string) ([]entity.UniverseEntry, error) {
	var rows []UniverseModel
	if err := r.db.WithContext(ctx).
		Where("exchange = ? AND is_active = ?", exchange, true).
		Order("stock_ticker ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.UniverseEntry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out, nil
}

func toModels(entries []entity.UniverseEntry) []UniverseModel {
	rows := make([]UniverseModel, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, UniverseModelFromEntity(e))
	}
	return rows
}
