// Package paper simulates the venue in memory for tests and offline runs.
package paper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"simbot-go/internal/exchange"
	"simbot-go/internal/execution"
)

// FillRecorder captures simulated fills for later inspection.
type FillRecorder interface {
	Record(execution.Fill)
}

// Account is an in-memory venue: orders fill immediately at their limit price
// (or the current mark for market orders), positions are signed, and realized
// PnL accrues whenever a fill reduces exposure. It satisfies execution.Venue.
type Account struct {
	mu          sync.Mutex
	cash        float64
	realizedPnL float64
	maxPosition int
	positions   map[string]positionState
	marks       map[string]float64
	recorder    FillRecorder
}

type positionState struct {
	Qty     int
	AvgCost float64
}

// PositionSnapshot exposes a read-only view of a single symbol position.
type PositionSnapshot struct {
	Qty     int
	AvgCost float64
}

// NewAccount constructs an account with starting cash and an optional
// per-symbol position cap (0 disables the cap).
func NewAccount(startingCash float64, maxPosition int) *Account {
	return &Account{
		cash:        startingCash,
		maxPosition: maxPosition,
		positions:   make(map[string]positionState),
		marks:       make(map[string]float64),
	}
}

// SetRecorder attaches a fill recorder; nil detaches it.
func (a *Account) SetRecorder(recorder FillRecorder) {
	a.mu.Lock()
	a.recorder = recorder
	a.mu.Unlock()
}

// SetMark publishes a last trade price for a symbol.
func (a *Account) SetMark(symbol string, price float64) {
	a.mu.Lock()
	a.marks[symbol] = price
	a.mu.Unlock()
}

// LastPrice serves the current mark, or ErrNoTrades before one is set.
func (a *Account) LastPrice(_ context.Context, symbol string) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	price, ok := a.marks[symbol]
	if !ok {
		return 0, fmt.Errorf("%s: %w", symbol, exchange.ErrNoTrades)
	}
	return price, nil
}

// Position returns the signed net position for a symbol.
func (a *Account) Position(_ context.Context, symbol string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positions[symbol].Qty, nil
}

// SubmitOrder fills the order immediately. Market orders fill at the current
// mark and fail like the real venue when no trade has printed yet.
func (a *Account) SubmitOrder(_ context.Context, order execution.Order) error {
	if order.Qty <= 0 {
		return errors.New("quantity must be positive")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	price := order.Price
	if order.Type == execution.Market {
		mark, ok := a.marks[order.Symbol]
		if !ok {
			return fmt.Errorf("%s: %w", order.Symbol, exchange.ErrNoTrades)
		}
		price = mark
	}
	if price <= 0 {
		return errors.New("price must be positive")
	}

	delta := order.Qty
	if order.Side == execution.Sell {
		delta = -order.Qty
	}
	state := a.positions[order.Symbol]
	newQty := state.Qty + delta
	if a.maxPosition > 0 && abs(newQty) > a.maxPosition {
		return errors.New("position limit exceeded")
	}

	a.applyFill(order.Symbol, state, delta, price)
	a.marks[order.Symbol] = price
	if a.recorder != nil {
		a.recorder.Record(execution.Fill{
			Symbol: order.Symbol,
			Side:   order.Side,
			Qty:    order.Qty,
			Price:  price,
			Ts:     time.Now().UTC(),
		})
	}
	return nil
}

// applyFill mutates cash, realized PnL, and the position, handling fills that
// reduce, flatten, or flip the existing exposure.
func (a *Account) applyFill(symbol string, state positionState, delta int, price float64) {
	a.cash -= float64(delta) * price

	sameSign := (state.Qty >= 0) == (delta >= 0)
	if state.Qty == 0 || sameSign {
		total := state.Qty + delta
		avg := price
		if total != 0 {
			avg = (state.AvgCost*float64(state.Qty) + price*float64(delta)) / float64(total)
		}
		a.positions[symbol] = positionState{Qty: total, AvgCost: avg}
		return
	}

	closing := min(abs(delta), abs(state.Qty))
	if state.Qty > 0 {
		a.realizedPnL += (price - state.AvgCost) * float64(closing)
	} else {
		a.realizedPnL += (state.AvgCost - price) * float64(closing)
	}
	remaining := state.Qty + delta
	switch {
	case remaining == 0:
		delete(a.positions, symbol)
	case (remaining > 0) == (state.Qty > 0):
		// Reduced but not flipped: cost basis unchanged.
		a.positions[symbol] = positionState{Qty: remaining, AvgCost: state.AvgCost}
	default:
		// Flipped through zero: leftover opens at the fill price.
		a.positions[symbol] = positionState{Qty: remaining, AvgCost: price}
	}
}

// Cash returns the current cash balance.
func (a *Account) Cash() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash
}

// RealizedPnL returns total closed-trade profit and loss.
func (a *Account) RealizedPnL() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.realizedPnL
}

// Positions returns a copy of all non-flat positions.
func (a *Account) Positions() map[string]PositionSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]PositionSnapshot, len(a.positions))
	for sym, pos := range a.positions {
		out[sym] = PositionSnapshot{Qty: pos.Qty, AvgCost: pos.AvgCost}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
