package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"mock_trader/internal/feature/auth/domain/entity"
	"mock_trader/internal/feature/users/transport/http/dto"
)

// UserUsecase はユーザー一覧取得のユースケースのインターフェースです。
type UserUsecase interface {
	ListAll(ctx context.Context) ([]entity.User, error)
}

// UserHandler はユーザー情報に関するHTTPリクエストを処理します。
type UserHandler struct {
	uc UserUsecase
}

// NewUserHandler は新しい UserHandler を作成します。
func NewUserHandler(uc UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// ListAll は登録済みユーザーの一覧を返します。
func (h *UserHandler) ListAll(c *gin.Context) {
	users, err := h.uc.ListAll(c.Request.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	out := make([]dto.UserItem, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserItem{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Username:  u.Username,
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
