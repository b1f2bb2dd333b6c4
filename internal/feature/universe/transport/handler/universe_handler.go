package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mock_trader/internal/feature/universe/domain/entity"
	"mock_trader/internal/feature/universe/transport/http/dto"
)

// UniverseUsecase は銘柄ユニバースの参照ユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type UniverseUsecase interface {
	ListActive(ctx context.Context, exchange string) ([]entity.UniverseEntry, error)
}

// UniverseHandler は銘柄ユニバースに関するHTTPリクエストを処理します。
type UniverseHandler struct {
	uc UniverseUsecase
}

// NewUniverseHandler は新しい UniverseHandler を作成します。
func NewUniverseHandler(uc UniverseUsecase) *UniverseHandler {
	return &UniverseHandler{uc: uc}
}

// List はクエリ ?exchange= で指定された取引所のアクティブな銘柄一覧を返します。
// 省略時は設定された取引所を使用します。
func (h *UniverseHandler) List(c *gin.Context) {
	entries, err := h.uc.ListActive(c.Request.Context(), c.Query("exchange"))
	if err != nil {
		slog.Error("failed to list stock universe", "error", err, "exchange", c.Query("exchange"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stock universe"})
		return
	}

	out := dto.UniverseList{Items: make([]dto.UniverseItem, 0, len(entries))}
	for _, e := range entries {
		out.Items = append(out.Items, dto.UniverseItem{
			Ticker:   e.StockTicker,
			Name:     e.StockName,
			Currency: e.Currency,
			Exchange: e.Exchange,
		})
	}
	out.Count = len(out.Items)
	if out.Count > 0 {
		out.Exchange = entries[0].Exchange
	} else {
		out.Exchange = strings.ToUpper(strings.TrimSpace(c.Query("exchange")))
	}
	c.JSON(http.StatusOK, out)
}
