// Package exchange hosts the REST client for the simulated venue.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"simbot-go/internal/signal"
)

// ErrNoTrades is returned by LastPrice when a symbol has no trade history yet.
var ErrNoTrades = errors.New("no trades recorded for symbol")

const (
	defaultTimeout = 10 * time.Second
	apiKeyEnv      = "SIMBOT_API_KEY"
)

// Client talks to the venue's polling REST API. Every request carries the
// X-API-Key header; all calls are synchronous with the transport timeout as
// the only deadline.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// Option configures Client construction parameters.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client (used by tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient constructs a venue client for the given base URL and API key.
func NewClient(baseURL, apiKey string, log zerolog.Logger, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// LoadAPIKeyFromEnv reads SIMBOT_API_KEY, best-effort loading a .env first.
func LoadAPIKeyFromEnv() (string, bool) {
	_ = godotenv.Load() // best-effort
	key := os.Getenv(apiKeyEnv)
	return key, key != ""
}

type casePayload struct {
	Tick int `json:"tick"`
}

type newsPayload struct {
	NewsID   int    `json:"news_id"`
	Tick     int    `json:"tick"`
	Headline string `json:"headline"`
	Body     string `json:"body"`
}

type candlePayload struct {
	Close float64 `json:"close"`
	Low   float64 `json:"low"`
}

type bookLevel struct {
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type bookPayload struct {
	Bids []bookLevel `json:"bids"`
	Asks []bookLevel `json:"asks"`
}

type securityPayload struct {
	Ticker   string `json:"ticker"`
	Position int    `json:"position"`
}

// OpenOrder mirrors one live order as reported by the venue.
type OpenOrder struct {
	OrderID  int     `json:"order_id"`
	Ticker   string  `json:"ticker"`
	Type     string  `json:"type"`
	Action   string  `json:"action"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Tick returns the current session time unit.
func (c *Client) Tick(ctx context.Context) (int, error) {
	var payload casePayload
	if err := c.get(ctx, "/case", nil, &payload); err != nil {
		return 0, fmt.Errorf("fetch tick: %w", err)
	}
	return payload.Tick, nil
}

// News returns the latest headlines. The feed may repeat items across polls;
// callers deduplicate by Headline.ID.
func (c *Client) News(ctx context.Context) ([]signal.Headline, error) {
	var payload []newsPayload
	if err := c.get(ctx, "/news", nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	headlines := make([]signal.Headline, 0, len(payload))
	for _, item := range payload {
		headlines = append(headlines, signal.Headline{
			ID:       item.NewsID,
			Tick:     item.Tick,
			Headline: item.Headline,
			Body:     item.Body,
		})
	}
	return headlines, nil
}

// LastPrice returns the most recent trade price for a symbol, or ErrNoTrades
// when the venue reports an empty history.
func (c *Client) LastPrice(ctx context.Context, symbol string) (float64, error) {
	candles, err := c.PriceHistory(ctx, symbol, 1)
	if err != nil {
		return 0, err
	}
	if len(candles) == 0 {
		return 0, fmt.Errorf("%s: %w", symbol, ErrNoTrades)
	}
	return candles[0].Close, nil
}

// PriceHistory returns up to limit bars of recent history, newest first.
func (c *Client) PriceHistory(ctx context.Context, symbol string, limit int) ([]signal.Candle, error) {
	params := url.Values{}
	params.Set("ticker", symbol)
	params.Set("limit", strconv.Itoa(limit))
	var payload []candlePayload
	if err := c.get(ctx, "/securities/history", params, &payload); err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", symbol, err)
	}
	candles := make([]signal.Candle, 0, len(payload))
	for _, bar := range payload {
		candles = append(candles, signal.Candle{Close: bar.Close, Low: bar.Low})
	}
	return candles, nil
}

// BidAsk returns the top of book for a symbol. Empty book sides are reported
// through the Quote's Has flags.
func (c *Client) BidAsk(ctx context.Context, symbol string) (signal.Quote, error) {
	params := url.Values{}
	params.Set("ticker", symbol)
	var payload bookPayload
	if err := c.get(ctx, "/securities/book", params, &payload); err != nil {
		return signal.Quote{}, fmt.Errorf("fetch book %s: %w", symbol, err)
	}
	quote := signal.Quote{Symbol: symbol}
	if len(payload.Bids) > 0 {
		quote.Bid = payload.Bids[0].Price
		quote.HasBid = true
	}
	if len(payload.Asks) > 0 {
		quote.Ask = payload.Asks[0].Price
		quote.HasAsk = true
	}
	return quote, nil
}

// OpenOrders lists all live orders for the session.
func (c *Client) OpenOrders(ctx context.Context) ([]OpenOrder, error) {
	params := url.Values{}
	params.Set("status", "OPEN")
	var payload []OpenOrder
	if err := c.get(ctx, "/orders", params, &payload); err != nil {
		return nil, fmt.Errorf("fetch open orders: %w", err)
	}
	return payload, nil
}

// Position returns the signed net position for a symbol.
func (c *Client) Position(ctx context.Context, symbol string) (int, error) {
	var payload []securityPayload
	if err := c.get(ctx, "/securities", nil, &payload); err != nil {
		return 0, fmt.Errorf("fetch positions: %w", err)
	}
	for _, sec := range payload {
		if sec.Ticker == symbol {
			return sec.Position, nil
		}
	}
	return 0, nil
}

// CancelAll cancels every open order for the session.
func (c *Client) CancelAll(ctx context.Context) error {
	params := url.Values{}
	params.Set("all", "1")
	if err := c.post(ctx, "/commands/cancel", params); err != nil {
		return fmt.Errorf("cancel all: %w", err)
	}
	return nil
}

// SubmitOrder places one order. The venue acknowledges synchronously; fills
// are never awaited.
func (c *Client) SubmitOrder(ctx context.Context, symbol, side, orderType string, qty int, price float64) error {
	params := url.Values{}
	params.Set("ticker", symbol)
	params.Set("type", orderType)
	params.Set("action", side)
	params.Set("quantity", strconv.Itoa(qty))
	if orderType == "LIMIT" {
		params.Set("price", strconv.FormatFloat(price, 'f', -1, 64))
	}
	if err := c.post(ctx, "/orders", params); err != nil {
		return fmt.Errorf("submit order %s %s: %w", side, symbol, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, out)
}

func (c *Client) post(ctx context.Context, path string, params url.Values) error {
	return c.do(ctx, http.MethodPost, path, params, nil)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("venue request failed")
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
