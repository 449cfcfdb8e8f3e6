// Package strategy derives trading decisions from market data and estimator state.
package strategy

import (
	"simbot-go/internal/estimate"
	"simbot-go/internal/signal"
)

// Evaluate compares the market price against the tracked fair value range:
// buy below the range, sell above it, otherwise hold. The range owner stays
// the estimate book; this reads a copy and never writes back.
func Evaluate(price float64, rng estimate.Range) signal.Action {
	switch {
	case price < rng.Low:
		return signal.Buy
	case price > rng.High:
		return signal.Sell
	default:
		return signal.Hold
	}
}

// EvaluateComposite compares a composite instrument's market price against
// the sum of its components' point estimates. Without both estimates there is
// no fair value to compare against, so the answer is hold; a stale or partial
// sum is never used.
func EvaluateComposite(compositePrice float64, legA, legB estimate.Range) signal.CompositeAction {
	if !legA.HasEstimate || !legB.HasEstimate {
		return signal.CompositeHold
	}
	combined := legA.Estimate + legB.Estimate
	switch {
	case compositePrice < combined:
		return signal.BuyCompositeSellLegs
	case compositePrice > combined:
		return signal.SellCompositeBuyLegs
	default:
		return signal.CompositeHold
	}
}
