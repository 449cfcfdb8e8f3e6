// Package execution handles order lifecycle and interaction with the venue.
package execution

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"simbot-go/internal/exchange"
	"simbot-go/internal/metrics"
	"simbot-go/internal/risk"
	"simbot-go/internal/signal"
)

// Side enumerates order directions used by the coordinator.
type Side string

const (
	// Buy indicates a long order.
	Buy Side = "BUY"
	// Sell indicates a short order.
	Sell Side = "SELL"
)

// OrderType selects the venue order type.
type OrderType string

const (
	// Limit is a priced order.
	Limit OrderType = "LIMIT"
	// Market crosses the book at any price.
	Market OrderType = "MARKET"
)

// Order represents a placement request the coordinator can submit.
type Order struct {
	Symbol string
	Side   Side
	Type   OrderType
	Qty    int
	Price  float64 // ignored for market orders
}

// Fill records an executed order for inspection by the paper venue.
type Fill struct {
	Symbol string    `json:"symbol"`
	Side   Side      `json:"side"`
	Qty    int       `json:"qty"`
	Price  float64   `json:"price"`
	Ts     time.Time `json:"ts"`
}

// Venue is the slice of the exchange the coordinator needs.
type Venue interface {
	SubmitOrder(ctx context.Context, order Order) error
	LastPrice(ctx context.Context, symbol string) (float64, error)
	Position(ctx context.Context, symbol string) (int, error)
}

// Config bundles the coordinator's pricing and sizing knobs.
type Config struct {
	OrderSize  int
	CostOffset float64
}

// Coordinator translates trading decisions into priced limit orders. It does
// not retry failed submissions and does not roll back sibling legs of a
// multi-leg trade.
type Coordinator struct {
	venue      Venue
	limits     risk.Limits
	orderSize  int
	costOffset float64
	log        zerolog.Logger
	liquidated bool
}

// NewCoordinator wires a venue, guard-rails, and pricing knobs together.
func NewCoordinator(venue Venue, limits risk.Limits, cfg Config, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		venue:      venue,
		limits:     limits,
		orderSize:  cfg.OrderSize,
		costOffset: cfg.CostOffset,
		log:        log,
	}
}

// Trade submits one limit order for a single-asset decision: buys are priced
// above the last trade and sells below it by the cost offset, so fills cover
// expected slippage. Hold is a no-op. A symbol with no trade history yet is
// skipped quietly; the next cycle will see a price.
func (c *Coordinator) Trade(ctx context.Context, symbol string, action signal.Action) error {
	if action == signal.Hold {
		return nil
	}
	price, err := c.venue.LastPrice(ctx, symbol)
	if err != nil {
		if errors.Is(err, exchange.ErrNoTrades) {
			c.log.Debug().Str("sym", symbol).Msg("no trades yet, skipping")
			return nil
		}
		return err
	}

	order := Order{Symbol: symbol, Type: Limit, Qty: c.limits.ClampQty(c.orderSize)}
	switch action {
	case signal.Buy:
		order.Side = Buy
		order.Price = price + c.costOffset
	case signal.Sell:
		order.Side = Sell
		order.Price = price - c.costOffset
	}
	return c.submit(ctx, order)
}

// TradeComposite executes the three-leg relative-value decision as
// best-effort independent submissions: composite leg first, then the two
// component legs. A failed leg is logged and counted; siblings still go out.
func (c *Coordinator) TradeComposite(ctx context.Context, action signal.CompositeAction, composite, legA, legB string) error {
	var compositeAction, legAction signal.Action
	switch action {
	case signal.BuyCompositeSellLegs:
		compositeAction, legAction = signal.Buy, signal.Sell
	case signal.SellCompositeBuyLegs:
		compositeAction, legAction = signal.Sell, signal.Buy
	default:
		return nil
	}

	var firstErr error
	for _, leg := range []struct {
		symbol string
		action signal.Action
	}{
		{composite, compositeAction},
		{legA, legAction},
		{legB, legAction},
	} {
		if err := c.Trade(ctx, leg.symbol, leg.action); err != nil {
			c.log.Warn().Err(err).Str("sym", leg.symbol).Msg("composite leg failed")
			metrics.OrderFailuresTotal.Inc()
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Liquidate flattens every non-zero position with one aggressive limit order
// at the last traded price, sized to the exact position magnitude. It runs at
// most once per coordinator; later calls are no-ops.
func (c *Coordinator) Liquidate(ctx context.Context, symbols []string) error {
	if c.liquidated {
		return nil
	}
	c.liquidated = true

	var firstErr error
	for _, symbol := range symbols {
		position, err := c.venue.Position(ctx, symbol)
		if err != nil {
			c.log.Warn().Err(err).Str("sym", symbol).Msg("position fetch failed during liquidation")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if position == 0 {
			continue
		}
		price, err := c.venue.LastPrice(ctx, symbol)
		if err != nil {
			c.log.Warn().Err(err).Str("sym", symbol).Msg("price fetch failed during liquidation")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		order := Order{Symbol: symbol, Type: Limit, Price: price}
		if position > 0 {
			order.Side = Sell
			order.Qty = position
		} else {
			order.Side = Buy
			order.Qty = -position
		}
		if err := c.submit(ctx, order); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Submit sends a pre-built order, clamped to the per-order ceiling. Used by
// the latency and maker strategies which price their own orders.
func (c *Coordinator) Submit(ctx context.Context, order Order) error {
	order.Qty = c.limits.ClampQty(order.Qty)
	return c.submit(ctx, order)
}

func (c *Coordinator) submit(ctx context.Context, order Order) error {
	if order.Qty <= 0 {
		return nil
	}
	if err := c.venue.SubmitOrder(ctx, order); err != nil {
		metrics.OrderFailuresTotal.Inc()
		c.log.Warn().Err(err).Str("sym", order.Symbol).Str("side", string(order.Side)).Msg("order rejected")
		return err
	}
	metrics.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side)).Inc()
	c.log.Info().
		Str("sym", order.Symbol).
		Str("side", string(order.Side)).
		Int("qty", order.Qty).
		Float64("px", order.Price).
		Msg("submit order")
	return nil
}
