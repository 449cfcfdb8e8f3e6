// Package signal standardizes payloads shared between the venue client, the
// estimators, and the strategy layers.
package signal

// Action expresses a single-asset trading decision.
type Action int

const (
	// Hold means the market price sits inside the plausible range.
	Hold Action = iota
	// Buy means the market price is below the lowest plausible value.
	Buy
	// Sell means the market price is above the highest plausible value.
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// CompositeAction expresses the three-leg relative-value decision for a
// composite instrument against its two components.
type CompositeAction int

const (
	// CompositeHold means no mispricing, or not enough information to tell.
	CompositeHold CompositeAction = iota
	// BuyCompositeSellLegs means the composite trades below the summed
	// component fair values.
	BuyCompositeSellLegs
	// SellCompositeBuyLegs means the composite trades above the summed
	// component fair values.
	SellCompositeBuyLegs
)

func (a CompositeAction) String() string {
	switch a {
	case BuyCompositeSellLegs:
		return "BUY_COMPOSITE_SELL_LEGS"
	case SellCompositeBuyLegs:
		return "SELL_COMPOSITE_BUY_LEGS"
	default:
		return "HOLD"
	}
}

// Headline is one raw news item as delivered by the venue feed. ID is the
// venue-assigned identifier used for deduplication across polls.
type Headline struct {
	ID       int
	Tick     int
	Headline string
	Body     string
}

// Quote carries the best bid and ask for one listing. A missing side is
// reported through the Has flags rather than a zero price.
type Quote struct {
	Symbol string
	Bid    float64
	Ask    float64
	HasBid bool
	HasAsk bool
}

// Candle is one bar of venue price history.
type Candle struct {
	Close float64
	Low   float64
}
