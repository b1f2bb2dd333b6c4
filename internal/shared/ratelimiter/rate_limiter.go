// Package ratelimiter は外部API呼び出しの頻度を制限するリミッタを提供します。
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter は interval あたり平均 limit 回の呼び出しを許可するトークンバケットです。
// 複数のgoroutineから安全に利用できます。
type RateLimiter struct {
	limiter *rate.Limiter // nil は制限なし
	limit   int
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limit または interval が0以下の場合は制限なしとして振る舞います。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit),
		limit:   limit,
	}
}

// WaitIfNeeded はトークンが残っていればすぐに戻り、なければ補充されるまで待機します。
// ctx がキャンセルされた場合、または期限までに補充されない場合はエラーを返します。
func (rl *RateLimiter) WaitIfNeeded(ctx context.Context) error {
	if rl.limiter == nil {
		return ctx.Err()
	}
	if rl.limiter.Allow() {
		return nil
	}
	slog.Info("[RATE LIMIT] limit reached, waiting", "limit", rl.limit)
	return rl.limiter.Wait(ctx)
}
