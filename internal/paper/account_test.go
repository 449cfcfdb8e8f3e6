package paper

import (
	"context"
	"errors"
	"math"
	"testing"

	"simbot-go/internal/exchange"
	"simbot-go/internal/execution"
)

func limitOrder(symbol string, side execution.Side, qty int, price float64) execution.Order {
	return execution.Order{Symbol: symbol, Side: side, Type: execution.Limit, Qty: qty, Price: price}
}

func TestSubmitOrderBuySellPnL(t *testing.T) {
	account := NewAccount(1_000_000, 0)
	ctx := context.Background()

	if err := account.SubmitOrder(ctx, limitOrder("UB", execution.Buy, 500, 100)); err != nil {
		t.Fatalf("unexpected buy error: %v", err)
	}
	if err := account.SubmitOrder(ctx, limitOrder("UB", execution.Buy, 250, 110)); err != nil {
		t.Fatalf("unexpected second buy error: %v", err)
	}

	positions := account.Positions()
	pos := positions["UB"]
	if pos.Qty != 750 {
		t.Fatalf("expected qty 750, got %d", pos.Qty)
	}
	expectedAvg := (500.0*100 + 250.0*110) / 750.0
	if math.Abs(pos.AvgCost-expectedAvg) > 1e-9 {
		t.Fatalf("expected avg cost %.4f, got %.4f", expectedAvg, pos.AvgCost)
	}

	if err := account.SubmitOrder(ctx, limitOrder("UB", execution.Sell, 250, 120)); err != nil {
		t.Fatalf("unexpected sell error: %v", err)
	}
	realized := account.RealizedPnL()
	if math.Abs(realized-(120-expectedAvg)*250) > 1e-6 {
		t.Fatalf("unexpected realized pnl %.4f", realized)
	}
	if account.Positions()["UB"].Qty != 500 {
		t.Fatalf("expected remaining qty 500")
	}
}

func TestSubmitOrderShortAndCover(t *testing.T) {
	account := NewAccount(0, 0)
	ctx := context.Background()

	if err := account.SubmitOrder(ctx, limitOrder("GEM", execution.Sell, 1000, 50)); err != nil {
		t.Fatalf("unexpected short error: %v", err)
	}
	if got, _ := account.Position(ctx, "GEM"); got != -1000 {
		t.Fatalf("expected -1000, got %d", got)
	}
	if err := account.SubmitOrder(ctx, limitOrder("GEM", execution.Buy, 1000, 48)); err != nil {
		t.Fatalf("unexpected cover error: %v", err)
	}
	if math.Abs(account.RealizedPnL()-2000) > 1e-9 {
		t.Fatalf("expected realized 2000, got %.2f", account.RealizedPnL())
	}
	if got, _ := account.Position(ctx, "GEM"); got != 0 {
		t.Fatalf("expected flat after cover, got %d", got)
	}
}

func TestSubmitOrderFlipThroughZero(t *testing.T) {
	account := NewAccount(0, 0)
	ctx := context.Background()

	_ = account.SubmitOrder(ctx, limitOrder("UB", execution.Buy, 100, 100))
	if err := account.SubmitOrder(ctx, limitOrder("UB", execution.Sell, 300, 105)); err != nil {
		t.Fatalf("unexpected flip error: %v", err)
	}
	pos := account.Positions()["UB"]
	if pos.Qty != -200 {
		t.Fatalf("expected -200 after flip, got %d", pos.Qty)
	}
	if pos.AvgCost != 105 {
		t.Fatalf("expected leftover basis at fill price, got %.2f", pos.AvgCost)
	}
	if math.Abs(account.RealizedPnL()-500) > 1e-9 {
		t.Fatalf("expected realized 500 on closed lot, got %.2f", account.RealizedPnL())
	}
}

func TestSubmitOrderPositionCap(t *testing.T) {
	account := NewAccount(0, 1000)
	ctx := context.Background()
	if err := account.SubmitOrder(ctx, limitOrder("UB", execution.Buy, 2000, 100)); err == nil {
		t.Fatalf("expected position cap error")
	}
}

func TestMarketOrderNeedsMark(t *testing.T) {
	account := NewAccount(0, 0)
	ctx := context.Background()
	order := execution.Order{Symbol: "CRZY_M", Side: execution.Buy, Type: execution.Market, Qty: 100}

	if err := account.SubmitOrder(ctx, order); !errors.Is(err, exchange.ErrNoTrades) {
		t.Fatalf("expected ErrNoTrades, got %v", err)
	}
	account.SetMark("CRZY_M", 9.95)
	if err := account.SubmitOrder(ctx, order); err != nil {
		t.Fatalf("unexpected market fill error: %v", err)
	}
}

func TestLastPriceFollowsFills(t *testing.T) {
	account := NewAccount(0, 0)
	ctx := context.Background()

	if _, err := account.LastPrice(ctx, "UB"); !errors.Is(err, exchange.ErrNoTrades) {
		t.Fatalf("expected ErrNoTrades before any mark, got %v", err)
	}
	_ = account.SubmitOrder(ctx, limitOrder("UB", execution.Buy, 100, 101.5))
	price, err := account.LastPrice(ctx, "UB")
	if err != nil {
		t.Fatalf("LastPrice returned error: %v", err)
	}
	if price != 101.5 {
		t.Fatalf("expected last price 101.5, got %.2f", price)
	}
}

func TestRecorderReceivesFills(t *testing.T) {
	account := NewAccount(0, 0)
	ledger := NewLedger(4)
	account.SetRecorder(ledger)

	_ = account.SubmitOrder(context.Background(), limitOrder("UB", execution.Buy, 100, 100))
	fills := ledger.Snapshot()
	if len(fills) != 1 {
		t.Fatalf("expected one recorded fill, got %d", len(fills))
	}
	if fills[0].Symbol != "UB" || fills[0].Qty != 100 {
		t.Fatalf("unexpected fill: %+v", fills[0])
	}
}
