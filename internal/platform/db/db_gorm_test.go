package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestBuildDSN はDSN文字列の生成を検証します。
func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{
			name:     "individual fields",
			cfg:      Config{Host: "localhost", Port: "5433", User: "u", Password: "p", Name: "trader", SSLMode: "disable"},
			expected: "host=localhost user=u password=p dbname=trader port=5433 sslmode=disable TimeZone=UTC",
		},
		{
			name:     "default port",
			cfg:      Config{Host: "db", User: "u", Password: "p", Name: "trader", SSLMode: "require"},
			expected: "host=db user=u password=p dbname=trader port=5432 sslmode=require TimeZone=UTC",
		},
		{
			name:     "URL takes precedence",
			cfg:      Config{URL: "postgres://u:p@db.example.com:5432/postgres", Host: "localhost", User: "x", Name: "y"},
			expected: "postgres://u:p@db.example.com:5432/postgres",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, BuildDSN(tt.cfg))
		})
	}
}

func TestConfig_Configured(t *testing.T) {
	t.Parallel()

	assert.True(t, Config{URL: "postgres://x"}.Configured())
	assert.True(t, Config{Host: "h", User: "u", Name: "n"}.Configured())
	assert.False(t, Config{Host: "h"}.Configured())
	assert.False(t, Config{}.Configured())
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		assert.Equal(t, "test-dsn", dsn)
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", time.Second, 10*time.Millisecond, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", time.Second, 10*time.Millisecond, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attempts)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	refused := errors.New("connection refused")
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return nil, refused
	}

	_, err := ConnectWithRetry("test-dsn", 50*time.Millisecond, 10*time.Millisecond, opener)

	assert.ErrorIs(t, err, refused)
	assert.GreaterOrEqual(t, attempts, 2)
}

// TestLoadConfigFromEnv は環境変数からデータベース設定が正しく読み込まれることを検証します。
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_SSLMODE", "")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, Config{
		Host: "envhost", Port: "5433", User: "envuser", Password: "envpass", Name: "envdb", SSLMode: "disable",
	}, cfg)
}

type migrateProbe struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	t.Setenv("RUN_MIGRATIONS", "false")
	require.NoError(t, Migrate(db, &migrateProbe{}))
	assert.False(t, db.Migrator().HasTable(&migrateProbe{}))

	t.Setenv("RUN_MIGRATIONS", "true")
	require.NoError(t, Migrate(db, &migrateProbe{}))
	assert.True(t, db.Migrator().HasTable(&migrateProbe{}))

	assert.NoError(t, Ping(context.Background(), db))
}
