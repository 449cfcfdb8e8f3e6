package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "TESTKEY1", zerolog.Nop()), server
}

func TestTick(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/case" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "TESTKEY1" {
			t.Fatalf("missing api key header")
		}
		_, _ = w.Write([]byte(`{"tick": 125}`))
	})

	tick, err := client.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}
	if tick != 125 {
		t.Fatalf("expected tick 125, got %d", tick)
	}
}

func TestNews(t *testing.T) {
	const body = `[{"news_id": 3, "tick": 50, "headline": "UB update", "body": "After 50 seconds, $99."},
		{"news_id": 4, "tick": 51, "headline": "GEM update", "body": "After 51 seconds, $48."}]`
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(body))
	})

	headlines, err := client.News(context.Background())
	if err != nil {
		t.Fatalf("News returned error: %v", err)
	}
	if len(headlines) != 2 {
		t.Fatalf("expected two headlines, got %d", len(headlines))
	}
	if headlines[0].ID != 3 || headlines[0].Headline != "UB update" {
		t.Fatalf("unexpected first headline: %+v", headlines[0])
	}
}

func TestLastPrice(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/securities/history" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("ticker") != "UB" || r.URL.Query().Get("limit") != "1" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[{"close": 100.25, "low": 99.8}]`))
	})

	price, err := client.LastPrice(context.Background(), "UB")
	if err != nil {
		t.Fatalf("LastPrice returned error: %v", err)
	}
	if price != 100.25 {
		t.Fatalf("expected 100.25, got %.2f", price)
	}
}

func TestLastPriceNoHistory(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.LastPrice(context.Background(), "UB")
	if !errors.Is(err, ErrNoTrades) {
		t.Fatalf("expected ErrNoTrades, got %v", err)
	}
}

func TestBidAsk(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/securities/book" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"bids":[{"price": 9.95, "quantity": 100}], "asks":[]}`))
	})

	quote, err := client.BidAsk(context.Background(), "CRZY_M")
	if err != nil {
		t.Fatalf("BidAsk returned error: %v", err)
	}
	if !quote.HasBid || quote.Bid != 9.95 {
		t.Fatalf("unexpected bid: %+v", quote)
	}
	if quote.HasAsk {
		t.Fatalf("expected empty ask side")
	}
}

func TestSubmitOrder(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("ticker") != "UB" || q.Get("action") != "BUY" || q.Get("type") != "LIMIT" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("quantity") != "5000" || q.Get("price") != "100.02" {
			t.Fatalf("unexpected sizing: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"order_id": 17}`))
	})

	err := client.SubmitOrder(context.Background(), "UB", "BUY", "LIMIT", 5000, 100.02)
	if err != nil {
		t.Fatalf("SubmitOrder returned error: %v", err)
	}
}

func TestSubmitMarketOrderOmitsPrice(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("price") {
			t.Fatalf("market order should not carry a price")
		}
		_, _ = w.Write([]byte(`{"order_id": 18}`))
	})

	err := client.SubmitOrder(context.Background(), "CRZY_M", "SELL", "MARKET", 6000, 0)
	if err != nil {
		t.Fatalf("SubmitOrder returned error: %v", err)
	}
}

func TestSubmitOrderRejected(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	err := client.SubmitOrder(context.Background(), "UB", "BUY", "LIMIT", 5000, 100)
	if err == nil {
		t.Fatalf("expected error for rejected order")
	}
}

func TestPosition(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/securities" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"ticker": "UB", "position": -3000}, {"ticker": "GEM", "position": 500}]`))
	})

	position, err := client.Position(context.Background(), "UB")
	if err != nil {
		t.Fatalf("Position returned error: %v", err)
	}
	if position != -3000 {
		t.Fatalf("expected -3000, got %d", position)
	}
	missing, err := client.Position(context.Background(), "ETF")
	if err != nil {
		t.Fatalf("Position returned error: %v", err)
	}
	if missing != 0 {
		t.Fatalf("expected 0 for unlisted symbol, got %d", missing)
	}
}

func TestOpenOrders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") != "OPEN" {
			t.Fatalf("expected status=OPEN, got %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[{"order_id": 1, "ticker": "ALGO", "type": "LIMIT", "action": "BUY", "quantity": 5000, "price": 9.98}]`))
	})

	orders, err := client.OpenOrders(context.Background())
	if err != nil {
		t.Fatalf("OpenOrders returned error: %v", err)
	}
	if len(orders) != 1 || orders[0].Ticker != "ALGO" || orders[0].Action != "BUY" {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestCancelAll(t *testing.T) {
	var hit bool
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/commands/cancel" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("all") != "1" {
			t.Fatalf("expected all=1, got %s", r.URL.RawQuery)
		}
		hit = true
	})

	if err := client.CancelAll(context.Background()); err != nil {
		t.Fatalf("CancelAll returned error: %v", err)
	}
	if !hit {
		t.Fatalf("cancel endpoint not called")
	}
}
