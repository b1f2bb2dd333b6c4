// Package db はPostgreSQLへのGORM接続とマイグレーションを提供します。
package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DefaultConnectTimeout is how long Open keeps retrying an unreachable database.
	DefaultConnectTimeout = 60 * time.Second
	// DefaultRetryInterval is the pause between connection attempts.
	DefaultRetryInterval = 3 * time.Second
)

// Config holds the database connection settings.
// URL (DATABASE_URL) takes precedence over the individual fields.
type Config struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Opener opens a gorm connection for a DSN. It is swapped out in tests.
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}
	return Config{
		URL:      os.Getenv("DATABASE_URL"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  sslMode,
	}
}

// Configured reports whether enough settings are present to build a DSN.
func (c Config) Configured() bool {
	return c.URL != "" || (c.Host != "" && c.User != "" && c.Name != "")
}

// BuildDSN はpgx形式の接続文字列を生成します。
func BuildDSN(cfg Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, port, cfg.SSLMode)
}

// PostgresOpener opens a connection through the pgx-based postgres dialector.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
}

// ConnectWithRetry は接続に成功するか timeout が経過するまで interval ごとに再試行します。
func ConnectWithRetry(dsn string, timeout, interval time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(interval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %d attempts: %w", attempt, err)
		}
		slog.Warn("DB connect failed, retrying...", "attempt", attempt, "error", err)
		time.Sleep(interval)
	}
}

// Open connects to Postgres, retrying for up to DefaultConnectTimeout.
func Open(cfg Config) (*gorm.DB, error) {
	return ConnectWithRetry(BuildDSN(cfg), DefaultConnectTimeout, DefaultRetryInterval, PostgresOpener)
}

// Migrate はRUN_MIGRATIONS=trueのときにモデルのテーブルを作成・更新します。
func Migrate(db *gorm.DB, models ...any) error {
	if os.Getenv("RUN_MIGRATIONS") != "true" {
		return nil
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	slog.Info("database migrations applied", "models", len(models))
	return nil
}

// Ping verifies the underlying connection pool can reach the database.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
