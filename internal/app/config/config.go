// Package config はアプリケーション全体の設定を環境変数から読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"mock_trader/internal/platform/db"
	"mock_trader/internal/platform/externalapi/finnhub"
	"mock_trader/internal/platform/redis"
)

const (
	defaultPort              = "8080"
	defaultTokenTTL          = 60 * time.Minute
	defaultSyncHour          = 1
	defaultSyncMinute        = 0
	defaultHeartbeatInterval = 30 * time.Minute
)

// Config aggregates every setting the server and sync binaries need.
type Config struct {
	Port               string
	JWTSecret          string
	AccessTokenTTL     time.Duration
	Exchange           string
	TimeZone           string
	Location           *time.Location
	SyncHour           int
	SyncMinute         int
	HeartbeatInterval  time.Duration
	CORSAllowedOrigins []string

	DB      db.Config
	Redis   redis.Config
	Finnhub finnhub.Config

	// 数値・期間のパースエラーはValidateでまとめて報告する
	parseErrs []string
}

// Load は .env（存在する場合）と環境変数から設定を読み込みます。
// 既に設定されている環境変数は .env で上書きされません。
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	c := &Config{
		Port:               getenv("PORT", defaultPort),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		Exchange:           strings.ToUpper(strings.TrimSpace(os.Getenv("EXCHANGE"))),
		TimeZone:           strings.TrimSpace(os.Getenv("TIMEZONE")),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		DB:                 db.LoadConfigFromEnv(),
		Redis:              redis.LoadConfig(),
		Finnhub:            finnhub.LoadConfig(),
	}

	minutes := c.intEnv("ACCESS_TOKEN_EXPIRE_MINUTES", int(defaultTokenTTL/time.Minute))
	c.AccessTokenTTL = time.Duration(minutes) * time.Minute
	c.SyncHour = c.intEnv("SYNC_HOUR", defaultSyncHour)
	c.SyncMinute = c.intEnv("SYNC_MINUTE", defaultSyncMinute)
	c.HeartbeatInterval = c.durationEnv("HEARTBEAT_INTERVAL", defaultHeartbeatInterval)
	return c
}

// Validate はサーバー起動に必要なすべての項目を検査し、不足・不正な変数をひとつのエラーにまとめて返します。
// 成功時は Location が設定されます。
func (c *Config) Validate() error {
	return c.validate(true)
}

// ValidateSync checks only what a one-shot sync needs: market data, exchange and database.
func (c *Config) ValidateSync() error {
	return c.validate(false)
}

func (c *Config) validate(server bool) error {
	var missing []string
	if server && c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Finnhub.APIKey == "" {
		missing = append(missing, "FINNHUB_API_KEY")
	}
	if c.Exchange == "" {
		missing = append(missing, "EXCHANGE")
	}
	if server && c.TimeZone == "" {
		missing = append(missing, "TIMEZONE")
	}
	if !c.DB.Configured() {
		missing = append(missing, "DATABASE_URL (or DB_HOST, DB_USER, DB_NAME)")
	}

	var invalid []string
	if server {
		invalid = c.serverChecks()
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", ")))
	}
	if len(invalid) > 0 {
		errs = append(errs, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, "; ")))
	}
	return errors.Join(errs...)
}

func (c *Config) serverChecks() []string {
	invalid := append([]string(nil), c.parseErrs...)
	if c.TimeZone != "" {
		loc, err := time.LoadLocation(c.TimeZone)
		if err != nil {
			invalid = append(invalid, fmt.Sprintf("TIMEZONE=%q: %v", c.TimeZone, err))
		} else {
			c.Location = loc
		}
	}
	if c.SyncHour < 0 || c.SyncHour > 23 {
		invalid = append(invalid, fmt.Sprintf("SYNC_HOUR=%d: must be 0-23", c.SyncHour))
	}
	if c.SyncMinute < 0 || c.SyncMinute > 59 {
		invalid = append(invalid, fmt.Sprintf("SYNC_MINUTE=%d: must be 0-59", c.SyncMinute))
	}
	if c.HeartbeatInterval <= 0 {
		invalid = append(invalid, "HEARTBEAT_INTERVAL: must be positive")
	}
	if c.AccessTokenTTL <= 0 {
		invalid = append(invalid, "ACCESS_TOKEN_EXPIRE_MINUTES: must be positive")
	}
	return invalid
}

func (c *Config) intEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Sprintf("%s=%q: not an integer", key, v))
		return def
	}
	return n
}

func (c *Config) durationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Sprintf("%s=%q: not a duration", key, v))
		return def
	}
	return d
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
