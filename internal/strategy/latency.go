package strategy

import (
	"simbot-go/internal/execution"
	"simbot-go/internal/risk"
	"simbot-go/internal/signal"
)

// LatencyArb trades the same security across a primary and an alternate
// listing: when one book's ask crosses the other's bid, it buys the cheap
// side and sells the rich side with market orders. Positions are tracked
// locally so sizing respects the cap without an extra venue round trip.
type LatencyArb struct {
	limits          risk.Limits
	primaryPosition int
	altPosition     int
	realizedEdge    float64
}

// NewLatencyArb builds the strategy with the given guard-rails.
func NewLatencyArb(limits risk.Limits) *LatencyArb {
	return &LatencyArb{limits: limits}
}

// Evaluate checks both crossing directions and returns the market order pair
// for the first opportunity found, or nil. Internal positions and the running
// edge are updated as if the orders fill; the venue is trusted to fill
// markets at the observed quotes.
func (l *LatencyArb) Evaluate(primary, alt signal.Quote) []execution.Order {
	if primary.HasAsk && alt.HasBid && primary.Ask < alt.Bid {
		size := l.limits.SizeWithin(l.primaryPosition + l.altPosition)
		if size <= 0 {
			return nil
		}
		l.primaryPosition += size
		l.altPosition -= size
		l.realizedEdge += (alt.Bid - primary.Ask) * float64(size)
		return []execution.Order{
			{Symbol: primary.Symbol, Side: execution.Buy, Type: execution.Market, Qty: size},
			{Symbol: alt.Symbol, Side: execution.Sell, Type: execution.Market, Qty: size},
		}
	}
	if alt.HasAsk && primary.HasBid && alt.Ask < primary.Bid {
		size := l.limits.SizeWithin(l.primaryPosition + l.altPosition)
		if size <= 0 {
			return nil
		}
		l.altPosition += size
		l.primaryPosition -= size
		l.realizedEdge += (primary.Bid - alt.Ask) * float64(size)
		return []execution.Order{
			{Symbol: alt.Symbol, Side: execution.Buy, Type: execution.Market, Qty: size},
			{Symbol: primary.Symbol, Side: execution.Sell, Type: execution.Market, Qty: size},
		}
	}
	return nil
}

// NetPosition reports combined exposure across both listings.
func (l *LatencyArb) NetPosition() int { return l.primaryPosition + l.altPosition }

// RealizedEdge reports the cumulative captured spread.
func (l *LatencyArb) RealizedEdge() float64 { return l.realizedEdge }
