// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"mock_trader/internal/platform/externalapi/finnhub"
	infrahttp "mock_trader/internal/platform/http"
	"mock_trader/internal/shared/ratelimiter"
)

// NewMarketClient creates a Finnhub client with a pooled HTTP client and,
// when CallsPerMinute is positive, a client-side rate limiter.
func NewMarketClient(cfg finnhub.Config) *finnhub.Client {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)

	var limiter finnhub.Limiter
	if cfg.CallsPerMinute > 0 {
		limiter = ratelimiter.NewRateLimiter(cfg.CallsPerMinute, time.Minute)
	}
	return finnhub.NewClient(cfg, httpClient, limiter)
}
