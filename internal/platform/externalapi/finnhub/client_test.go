package finnhub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock_trader/internal/feature/universe/domain"
	"mock_trader/internal/feature/universe/domain/entity"
)

type mockLimiter struct {
	WaitIfNeededFunc func(ctx context.Context) error
	calls            int
}

func (m *mockLimiter) WaitIfNeeded(ctx context.Context) error {
	m.calls++
	if m.WaitIfNeededFunc != nil {
		return m.WaitIfNeededFunc(ctx)
	}
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{APIKey: "test-key", BaseURL: server.URL + "/", Timeout: time.Second}
	return NewClient(cfg, server.Client(), nil), server
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "abc")
	t.Setenv("FINNHUB_API_BASE_URL", "")

	cfg := LoadConfig()

	assert.Equal(t, "abc", cfg.APIKey)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 60, cfg.CallsPerMinute)
}

func TestClient_FetchSymbols_Success(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/symbol", r.URL.Path)
		assert.Equal(t, "US", r.URL.Query().Get("exchange"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"currency":"USD","description":"Apple Inc","displaySymbol":"AAPL","figi":"BBG000B9XRY4","mic":"XNAS","symbol":"AAPL","type":"Common Stock"},
			{"currency":"USD","description":"Microsoft Corp","displaySymbol":"MSFT","symbol":"MSFT","type":"Common Stock"}
		]`))
	})

	records, err := client.FetchSymbols(context.Background(), "US")

	require.NoError(t, err)
	assert.Equal(t, []entity.SymbolRecord{
		{Symbol: "AAPL", Description: "Apple Inc", Currency: "USD"},
		{Symbol: "MSFT", Description: "Microsoft Corp", Currency: "USD"},
	}, records)
}

func TestClient_FetchSymbols_EmptyArray(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	records, err := client.FetchSymbols(context.Background(), "US")

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_FetchSymbols_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedStatus int
		expectedDetail string
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Invalid API key."}`))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: `{"error":"Invalid API key."}`,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			expectedStatus: http.StatusTooManyRequests,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("bad gateway"))
			},
			expectedStatus: http.StatusBadGateway,
			expectedDetail: "bad gateway",
		},
		{
			name: "accepted is not success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
				_, _ = w.Write([]byte(`[{"symbol":"AAPL","description":"Apple Inc","currency":"USD"}]`))
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[{"symbol":`))
			},
			expectedStatus: http.StatusOK,
			expectedDetail: "malformed response",
		},
		{
			name: "object instead of array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error":"exchange not supported"}`))
			},
			expectedStatus: http.StatusOK,
			expectedDetail: "malformed response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newTestClient(t, tt.handler)

			records, err := client.FetchSymbols(context.Background(), "US")

			assert.Nil(t, records)
			var connErr *domain.ConnectivityError
			require.ErrorAs(t, err, &connErr)
			assert.Equal(t, tt.expectedStatus, connErr.Status)
			if tt.expectedDetail != "" {
				assert.Equal(t, tt.expectedDetail, connErr.Detail)
			}
			assert.Equal(t, "connectivity", domain.Kind(err))
		})
	}
}

func TestClient_FetchSymbols_Timeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(server.Close)

	httpClient := server.Client()
	httpClient.Timeout = 20 * time.Millisecond
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, httpClient, nil)

	_, err := client.FetchSymbols(context.Background(), "US")

	var connErr *domain.ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 0, connErr.Status)
}

func TestClient_FetchSymbols_Unreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: url}, &http.Client{Timeout: time.Second}, nil)

	_, err := client.FetchSymbols(context.Background(), "US")

	assert.Equal(t, "connectivity", domain.Kind(err))
}

func TestClient_UsesLimiter(t *testing.T) {
	t.Parallel()

	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	t.Run("limiter is consulted before each call", func(t *testing.T) {
		limiter := &mockLimiter{}
		client := NewClient(Config{BaseURL: server.URL}, server.Client(), limiter)

		_, err := client.FetchSymbols(context.Background(), "US")
		require.NoError(t, err)
		assert.Equal(t, 1, limiter.calls)
	})

	t.Run("limiter error aborts the call", func(t *testing.T) {
		before := hits
		limiter := &mockLimiter{WaitIfNeededFunc: func(ctx context.Context) error { return context.Canceled }}
		client := NewClient(Config{BaseURL: server.URL}, server.Client(), limiter)

		_, err := client.FetchSymbols(context.Background(), "US")

		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, before, hits, "request must not be sent")
	})
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "reachable", status: http.StatusOK, body: `{"c":189.5,"h":190,"l":187,"o":188,"pc":188.2,"t":1700000000}`},
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":"You don't have access to this resource."}`, wantErr: true},
		{name: "not json", status: http.StatusOK, body: `<html></html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/quote", r.URL.Path)
				assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := client.Ping(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
