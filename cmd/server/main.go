package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"mock_trader/internal/app/config"
	"mock_trader/internal/app/di"
	"mock_trader/internal/app/jobs"
	"mock_trader/internal/app/router"
	authadapters "mock_trader/internal/feature/auth/adapters"
	authentity "mock_trader/internal/feature/auth/domain/entity"
	authhandler "mock_trader/internal/feature/auth/transport/handler"
	authusecase "mock_trader/internal/feature/auth/usecase"
	universeadapters "mock_trader/internal/feature/universe/adapters"
	"mock_trader/internal/feature/universe/domain"
	universehandler "mock_trader/internal/feature/universe/transport/handler"
	universeusecase "mock_trader/internal/feature/universe/usecase"
	userhandler "mock_trader/internal/feature/users/transport/handler"
	userusecase "mock_trader/internal/feature/users/usecase"
	infradb "mock_trader/internal/platform/db"
	jwtmw "mock_trader/internal/platform/jwt"
	"mock_trader/internal/platform/logx"
	infraredis "mock_trader/internal/platform/redis"
	"mock_trader/internal/platform/scheduler"
)

const (
	serviceName     = "mock-trader"
	version         = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	slog.SetDefault(logx.New())

	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 設定
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	// 外部API疎通確認
	market := di.NewMarketClient(cfg.Finnhub)
	if err := market.Ping(ctx); err != nil {
		return err
	}
	slog.Info("market data api reachable", "base_url", cfg.Finnhub.BaseURL)

	// Redis（任意）
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err, "addr", cfg.Redis.Addr())
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	sessionRepo := di.NewSessionRepository(rdb, db, cfg.AccessTokenTTL)
	universeRepo := di.NewUniverseRepository(rdb, db)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, jwtmw.NewGenerator(cfg.JWTSecret, cfg.AccessTokenTTL))
	userUC := userusecase.NewUserUsecase(userRepo)
	listUC := universeusecase.NewListUsecase(universeRepo, cfg.Exchange)
	reconciler := universeusecase.NewReconciler(market, universeRepo, cfg.Exchange)

	// スケジューラー
	sched := scheduler.New(cfg.Location, scheduler.WithErrorKind(domain.Kind))
	if err := jobs.RegisterJobs(sched, jobs.Schedule{
		HeartbeatInterval: cfg.HeartbeatInterval,
		SyncHour:          cfg.SyncHour,
		SyncMinute:        cfg.SyncMinute,
	}, reconciler); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()
	jobs.LogSyncStatus(sched)

	// ルータ生成
	r := router.NewRouter(
		router.Options{
			Service:        serviceName,
			Version:        version,
			JWTSecret:      cfg.JWTSecret,
			Sessions:       authUC,
			AllowedOrigins: cfg.CORSAllowedOrigins,
		},
		authhandler.NewAuthHandler(authUC),
		userhandler.NewUserHandler(userUC),
		universehandler.NewUniverseHandler(listUC),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openDatabase は接続・マイグレーション・疎通確認を順に行います。
func openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := infradb.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := infradb.Migrate(db, &authentity.User{}, &authadapters.SessionModel{}, &universeadapters.UniverseModel{}); err != nil {
		return nil, err
	}
	if err := infradb.Ping(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}
