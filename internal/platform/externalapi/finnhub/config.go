// Package finnhub provides a client for the Finnhub stock market API.
package finnhub

import (
	"os"
	"time"
)

// DefaultBaseURL is used when FINNHUB_API_BASE_URL is not set.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// Config holds configuration for the Finnhub API client.
type Config struct {
	APIKey         string        // API key sent as the token query parameter
	BaseURL        string        // Base URL for the API (e.g., "https://finnhub.io/api/v1")
	Timeout        time.Duration // HTTP request timeout
	CallsPerMinute int           // 0 disables client-side rate limiting
}

// LoadConfig loads Finnhub configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("FINNHUB_API_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		APIKey:         os.Getenv("FINNHUB_API_KEY"),
		BaseURL:        base,
		Timeout:        10 * time.Second,
		CallsPerMinute: 60,
	}
}
