package strategy

import (
	"math"

	"simbot-go/internal/execution"
	"simbot-go/internal/risk"
	"simbot-go/internal/signal"
)

// Maker quotes around the last trade with a spread widened by recent
// volatility: the further the rolling average sits above the rolling low, the
// wider the quotes. Order size scales with inventory so a loaded book unwinds
// faster than it accumulates.
type Maker struct {
	alpha  float64
	window int
	floor  float64
	limits risk.Limits
}

// NewMaker builds the market-making strategy. Zero knobs get conservative
// defaults: alpha 0.1, window 20, floor 0.02.
func NewMaker(alpha float64, window int, floor float64, limits risk.Limits) *Maker {
	if alpha <= 0 {
		alpha = 0.1
	}
	if window <= 0 {
		window = 20
	}
	if floor <= 0 {
		floor = 0.02
	}
	return &Maker{alpha: alpha, window: window, floor: floor, limits: limits}
}

// Spread derives the dynamic half-spread from price history (newest first).
// ok is false until a full window of bars is available.
func (m *Maker) Spread(history []signal.Candle) (float64, bool) {
	if len(history) < m.window {
		return 0, false
	}
	bars := history[:m.window]
	var sum float64
	low := math.Inf(1)
	for _, bar := range bars {
		sum += bar.Close
		if bar.Low < low {
			low = bar.Low
		}
	}
	average := sum / float64(m.window)
	return math.Max(m.floor, m.alpha*(average-low)), true
}

// Quotes produces the resting orders for the current inventory: a sell above
// the last trade when long, and a buy below it when short or flat.
func (m *Maker) Quotes(symbol string, position int, lastPrice, spread float64) []execution.Order {
	var orders []execution.Order
	if position > 0 {
		orders = append(orders, execution.Order{
			Symbol: symbol,
			Side:   execution.Sell,
			Type:   execution.Limit,
			Qty:    m.OrderSize(position),
			Price:  lastPrice + spread,
		})
	}
	if position <= 0 {
		orders = append(orders, execution.Order{
			Symbol: symbol,
			Side:   execution.Buy,
			Type:   execution.Limit,
			Qty:    m.OrderSize(position),
			Price:  lastPrice - spread,
		})
	}
	return orders
}

// OrderSize scales quote size with inventory, falling back to the full order
// size when flat and never exceeding the per-order ceiling.
func (m *Maker) OrderSize(position int) int {
	if position < 0 {
		position = -position
	}
	if m.limits.MaxPosition <= 0 || position == 0 {
		return m.limits.MaxOrderSize
	}
	scaled := m.limits.MaxOrderSize * position / m.limits.MaxPosition
	if scaled == 0 {
		return m.limits.MaxOrderSize
	}
	return m.limits.ClampQty(scaled)
}
