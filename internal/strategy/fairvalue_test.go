package strategy

import (
	"math"
	"testing"

	"simbot-go/internal/estimate"
	"simbot-go/internal/signal"
)

func TestEvaluate(t *testing.T) {
	rng := estimate.Range{Low: 100.1, High: 100.9}
	cases := []struct {
		price    float64
		expected signal.Action
	}{
		{99.5, signal.Buy},
		{101.0, signal.Sell},
		{100.5, signal.Hold},
		{100.1, signal.Hold},
		{100.9, signal.Hold},
	}
	for _, tc := range cases {
		if got := Evaluate(tc.price, rng); got != tc.expected {
			t.Fatalf("price %.2f: expected %s, got %s", tc.price, tc.expected, got)
		}
	}
}

func TestEvaluateUnboundedRangeHolds(t *testing.T) {
	rng := estimate.Range{Low: math.Inf(-1), High: math.Inf(1)}
	if got := Evaluate(123.45, rng); got != signal.Hold {
		t.Fatalf("expected hold before any disclosure, got %s", got)
	}
}

func TestEvaluateCompositeMissingEstimate(t *testing.T) {
	withEstimate := estimate.Range{Estimate: 50, HasEstimate: true}
	without := estimate.Range{}

	if got := EvaluateComposite(1, withEstimate, without); got != signal.CompositeHold {
		t.Fatalf("expected hold with missing leg estimate, got %s", got)
	}
	if got := EvaluateComposite(1000, without, withEstimate); got != signal.CompositeHold {
		t.Fatalf("expected hold regardless of price, got %s", got)
	}
}

func TestEvaluateComposite(t *testing.T) {
	legA := estimate.Range{Estimate: 50, HasEstimate: true}
	legB := estimate.Range{Estimate: 49.5, HasEstimate: true}

	if got := EvaluateComposite(98, legA, legB); got != signal.BuyCompositeSellLegs {
		t.Fatalf("expected buy composite at 98 vs 99.5, got %s", got)
	}
	if got := EvaluateComposite(101, legA, legB); got != signal.SellCompositeBuyLegs {
		t.Fatalf("expected sell composite at 101 vs 99.5, got %s", got)
	}
	if got := EvaluateComposite(99.5, legA, legB); got != signal.CompositeHold {
		t.Fatalf("expected hold at fair value, got %s", got)
	}
}
