package usecase

import (
	"context"
	"strings"

	"mock_trader/internal/feature/universe/domain/entity"
)

// UniverseLister reads the active entries of an exchange.
type UniverseLister interface {
	ListActive(ctx context.Context, exchange string) ([]entity.UniverseEntry, error)
}

// ListUsecase serves the universe listing endpoint.
type ListUsecase struct {
	repo            UniverseLister
	defaultExchange string
}

// NewListUsecase creates a ListUsecase; an empty exchange argument falls back to defaultExchange.
func NewListUsecase(repo UniverseLister, defaultExchange string) *ListUsecase {
	return &ListUsecase{repo: repo, defaultExchange: defaultExchange}
}

// ListActive returns the active entries of exchange sorted by ticker.
func (u *ListUsecase) ListActive(ctx context.Context, exchange string) ([]entity.UniverseEntry, error) {
	exchange = strings.ToUpper(strings.TrimSpace(exchange))
	if exchange == "" {
		exchange = u.defaultExchange
	}
	return u.repo.ListActive(ctx, exchange)
}
