package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"mock_trader/internal/feature/universe/domain"
	"mock_trader/internal/feature/universe/domain/entity"
	"mock_trader/internal/feature/universe/usecase"
	"mock_trader/internal/platform/externalapi/finnhub/dto"
)

// maxErrorBody caps how much of an error response is kept in ConnectivityError.Detail.
const maxErrorBody = 512

// Limiter throttles outgoing requests.
type Limiter interface {
	WaitIfNeeded(ctx context.Context) error
}

// Client はFinnhub APIから銘柄一覧を取得するMarketDataClient実装です。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter Limiter
}

var _ usecase.MarketDataClient = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientを生成します。limiter は nil でも構いません。
func NewClient(cfg Config, client *http.Client, limiter Limiter) *Client {
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// FetchSymbols は /stock/symbol を呼び出し、取引所の銘柄スナップショットを返します。
// 通信エラー、200以外のステータス、不正なJSONはすべて *domain.ConnectivityError として返します。
func (c *Client) FetchSymbols(ctx context.Context, exchange string) ([]entity.SymbolRecord, error) {
	q := url.Values{}
	q.Set("exchange", exchange)

	var body []dto.StockSymbol
	if err := c.get(ctx, "stock/symbol", q, &body); err != nil {
		return nil, err
	}

	records := make([]entity.SymbolRecord, 0, len(body))
	for _, s := range body {
		records = append(records, entity.SymbolRecord{
			Symbol:      s.Symbol,
			Description: s.Description,
			Currency:    s.Currency,
		})
	}
	slog.Debug("fetched symbol snapshot", "exchange", exchange, "count", len(records))
	return records, nil
}

// Ping は /quote?symbol=AAPL を呼び出してAPIへの到達性を確認します。
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("symbol", "AAPL")

	var quote dto.Quote
	return c.get(ctx, "quote", q, &quote)
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.WaitIfNeeded(ctx); err != nil {
			return &domain.ConnectivityError{Detail: "rate limiter", Err: err}
		}
	}

	q.Set("token", c.cfg.APIKey)
	u := fmt.Sprintf("%s/%s?%s", strings.TrimRight(c.cfg.BaseURL, "/"), endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &domain.ConnectivityError{Detail: "build request", Err: err}
	}

	res, err := c.client.Do(req)
	if err != nil {
		return &domain.ConnectivityError{Detail: endpoint, Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &domain.ConnectivityError{
			Status: res.StatusCode,
			Detail: strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &domain.ConnectivityError{Status: res.StatusCode, Detail: "malformed response", Err: err}
	}
	return nil
}
