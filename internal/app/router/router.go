package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "mock_trader/internal/feature/auth/transport/handler"
	universehandler "mock_trader/internal/feature/universe/transport/handler"
	userhandler "mock_trader/internal/feature/users/transport/handler"
	healthhandler "mock_trader/internal/platform/http/handler"
	jwtmw "mock_trader/internal/platform/jwt"
)

// Options はルーター生成に必要な設定です。
type Options struct {
	Service        string
	Version        string
	JWTSecret      string
	Sessions       jwtmw.SessionChecker
	AllowedOrigins []string
}

func NewRouter(opts Options, authHandler *authhandler.AuthHandler, users *userhandler.UserHandler,
	universe *universehandler.UniverseHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// CORS_ALLOWED_ORIGINS が設定されている場合のみ有効化
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 認証不要
	r.GET("/", healthhandler.Root(opts.Service, opts.Version))
	// 導通確認用
	r.GET("/healthz", healthhandler.Health)
	r.HEAD("/healthz", healthhandler.Health)
	r.OPTIONS("/healthz", healthhandler.Health)
	// 新規ユーザー登録
	r.POST("/auth/register", authHandler.Register)
	// ログイン（JWT 発行）
	r.POST("/auth/login", authHandler.Login)

	// 認証必須のルート
	// → リクエストヘッダーに JWT と有効なセッションが必要になる
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(opts.JWTSecret, opts.Sessions))
	{
		auth.POST("/auth/logout", authHandler.Logout)
		auth.GET("/user/all", users.ListAll)
		auth.GET("/universe", universe.List)
	}

	return r
}
