// Package estimate narrows per-asset fair value ranges from streamed disclosures.
package estimate

import "math"

const (
	defaultSessionLength = 300
	defaultDecayConstant = 50
)

// Range is the current plausible fair value interval for one asset, together
// with the most recently disclosed point estimate. Bounds start unbounded and
// only ever tighten.
type Range struct {
	Low         float64
	High        float64
	Estimate    float64
	HasEstimate bool
}

// Width returns the interval width; it can be negative after two mutually
// inconsistent disclosures, which the tracker surfaces rather than repairs.
func (r Range) Width() float64 { return r.High - r.Low }

// Book owns the tracked ranges for a fixed symbol set. It is the only writer;
// everything else reads copies through Lookup. The trading loop is
// single-threaded, so no locking is required.
type Book struct {
	sessionLength float64
	decayConstant float64
	ranges        map[string]*Range
	symbols       []string
}

// NewBook creates one unbounded range per symbol. Zero sessionLength or
// decayConstant fall back to the standard 300-tick session with decay 50.
func NewBook(symbols []string, sessionLength, decayConstant float64) *Book {
	if sessionLength <= 0 {
		sessionLength = defaultSessionLength
	}
	if decayConstant <= 0 {
		decayConstant = defaultDecayConstant
	}
	book := &Book{
		sessionLength: sessionLength,
		decayConstant: decayConstant,
		ranges:        make(map[string]*Range, len(symbols)),
	}
	for _, sym := range symbols {
		if sym == "" {
			continue
		}
		if _, dup := book.ranges[sym]; dup {
			continue
		}
		book.ranges[sym] = &Range{Low: math.Inf(-1), High: math.Inf(1)}
		book.symbols = append(book.symbols, sym)
	}
	return book
}

// Symbols returns the tracked symbols in configuration order.
func (b *Book) Symbols() []string {
	out := make([]string, len(b.symbols))
	copy(out, b.symbols)
	return out
}

// Apply narrows the symbol's range with one disclosure. The disclosure implies
// value ± (sessionLength−elapsed)/decayConstant, which is intersected with the
// current range; the point estimate is replaced unconditionally. Returns the
// updated range, or ok=false for an untracked symbol.
func (b *Book) Apply(symbol string, value float64, elapsed int) (Range, bool) {
	rng, ok := b.ranges[symbol]
	if !ok {
		return Range{}, false
	}
	adjustment := (b.sessionLength - float64(elapsed)) / b.decayConstant
	rng.Low = math.Max(rng.Low, value-adjustment)
	rng.High = math.Min(rng.High, value+adjustment)
	rng.Estimate = value
	rng.HasEstimate = true
	return *rng, true
}

// Lookup returns a copy of the symbol's current range.
func (b *Book) Lookup(symbol string) (Range, bool) {
	rng, ok := b.ranges[symbol]
	if !ok {
		return Range{}, false
	}
	return *rng, true
}
