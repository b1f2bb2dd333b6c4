package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock_trader/internal/feature/auth/domain/entity"
)

type mockUserUsecase struct {
	ListAllFunc func(ctx context.Context) ([]entity.User, error)
}

func (m *mockUserUsecase) ListAll(ctx context.Context) ([]entity.User, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

func TestUserHandler_ListAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	created := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	t.Run("success omits password", func(t *testing.T) {
		h := NewUserHandler(&mockUserUsecase{ListAllFunc: func(ctx context.Context) ([]entity.User, error) {
			return []entity.User{{
				ID: 1, FirstName: "Taro", LastName: "Yamada", Email: "taro@example.com",
				Username: "taro", Password: "$2a$10$secret", IsActive: true, CreatedAt: created,
			}}, nil
		}})
		r := gin.New()
		r.GET("/user/all", h.ListAll)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/all", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
		assert.NotContains(t, w.Body.String(), "$2a$10$secret")

		var got []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "taro", got[0]["username"])
		assert.Equal(t, "taro@example.com", got[0]["email"])
		assert.Equal(t, true, got[0]["is_active"])
		assert.Equal(t, "2025-04-01T09:00:00Z", got[0]["created_at"])
	})

	t.Run("empty list", func(t *testing.T) {
		h := NewUserHandler(&mockUserUsecase{})
		r := gin.New()
		r.GET("/user/all", h.ListAll)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/all", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("usecase error", func(t *testing.T) {
		h := NewUserHandler(&mockUserUsecase{ListAllFunc: func(ctx context.Context) ([]entity.User, error) {
			return nil, errors.New("db down")
		}})
		r := gin.New()
		r.GET("/user/all", h.ListAll)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/all", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"failed to list users"}`, w.Body.String())
	})
}
