// Package session drives the news-polling trade cycle for one bounded run.
package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"simbot-go/internal/estimate"
	"simbot-go/internal/execution"
	"simbot-go/internal/metrics"
	"simbot-go/internal/news"
	"simbot-go/internal/signal"
	"simbot-go/internal/strategy"
)

// Gateway is the slice of the venue the loop reads from. Order entry goes
// through the coordinator.
type Gateway interface {
	Tick(ctx context.Context) (int, error)
	News(ctx context.Context) ([]signal.Headline, error)
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

// Clock abstracts waiting so tests can drive cycles without real delays.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Config bounds the loop: which symbols the news feed discloses values for,
// the composite built from the first two, when to cut over to liquidation,
// and how long to rest between cycles.
type Config struct {
	Symbols      []string
	Composite    string
	CutoverTick  int
	PollInterval time.Duration
}

// Loop owns the cycle ordering: tick, news, tracker updates, signals, orders.
// Nothing inside it self-schedules; one call to Run drives everything.
type Loop struct {
	gateway Gateway
	book    *estimate.Book
	coord   *execution.Coordinator
	cfg     Config
	log     zerolog.Logger
	clock   Clock
	seen    map[int]struct{}
}

// Option adjusts Loop construction.
type Option func(*Loop)

// WithClock swaps the real clock for a test double.
func WithClock(clock Clock) Option {
	return func(l *Loop) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// New assembles a session loop around an estimator book and a coordinator.
func New(gateway Gateway, book *estimate.Book, coord *execution.Coordinator, cfg Config, log zerolog.Logger, opts ...Option) *Loop {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	loop := &Loop{
		gateway: gateway,
		book:    book,
		coord:   coord,
		cfg:     cfg,
		log:     log,
		clock:   realClock{},
		seen:    make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(loop)
	}
	return loop
}

// Run polls until the cutover tick, then liquidates every instrument and
// returns. A tick fetch failure skips the cycle: without the session time
// there is no safe decision to make. Cancellation is checked at the top of
// each cycle; an order already dispatched is never recalled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tick, err := l.gateway.Tick(ctx)
		if err != nil {
			l.log.Warn().Err(err).Msg("tick fetch failed, skipping cycle")
			if err := l.clock.Sleep(ctx, l.cfg.PollInterval); err != nil {
				return err
			}
			continue
		}
		if tick >= l.cfg.CutoverTick {
			l.log.Info().Int("tick", tick).Msg("cutover reached, liquidating")
			return l.coord.Liquidate(ctx, l.instruments())
		}
		l.cycle(ctx)
		if err := l.clock.Sleep(ctx, l.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// cycle runs one poll-parse-trade pass. Faults during news or price
// retrieval degrade the cycle to a no-op rather than stopping the loop.
func (l *Loop) cycle(ctx context.Context) {
	items, err := l.gateway.News(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("news fetch failed, no trades this cycle")
		return
	}
	l.ingest(items)
	l.tradeSingles(ctx)
	l.tradeComposite(ctx)
}

// ingest applies unseen headlines to the estimator in feed-delivery order.
// Every distinct id lands in the dedup set exactly once, actionable or not,
// so a reappearing item is never reprocessed.
func (l *Loop) ingest(items []signal.Headline) {
	for _, item := range items {
		if _, dup := l.seen[item.ID]; dup {
			continue
		}
		l.seen[item.ID] = struct{}{}
		metrics.NewsItemsTotal.Inc()

		event, ok := news.Parse(item, l.cfg.Symbols)
		if !ok {
			metrics.ParseFailuresTotal.Inc()
			l.log.Debug().Int("id", item.ID).Str("headline", item.Headline).Msg("headline not actionable")
			continue
		}
		rng, ok := l.book.Apply(event.Symbol, event.Value, event.Elapsed)
		if !ok {
			continue
		}
		l.log.Info().
			Str("sym", event.Symbol).
			Float64("low", rng.Low).
			Float64("high", rng.High).
			Float64("estimate", rng.Estimate).
			Msg("range updated")
	}
}

func (l *Loop) tradeSingles(ctx context.Context) {
	for _, symbol := range l.cfg.Symbols {
		rng, ok := l.book.Lookup(symbol)
		if !ok {
			continue
		}
		price, err := l.gateway.LastPrice(ctx, symbol)
		if err != nil {
			l.log.Debug().Err(err).Str("sym", symbol).Msg("no price, holding")
			continue
		}
		action := strategy.Evaluate(price, rng)
		if err := l.coord.Trade(ctx, symbol, action); err != nil {
			l.log.Warn().Err(err).Str("sym", symbol).Msg("trade failed")
		}
	}
}

func (l *Loop) tradeComposite(ctx context.Context) {
	if l.cfg.Composite == "" || len(l.cfg.Symbols) < 2 {
		return
	}
	price, err := l.gateway.LastPrice(ctx, l.cfg.Composite)
	if err != nil {
		l.log.Debug().Err(err).Str("sym", l.cfg.Composite).Msg("no composite price, holding")
		return
	}
	legA, okA := l.book.Lookup(l.cfg.Symbols[0])
	legB, okB := l.book.Lookup(l.cfg.Symbols[1])
	if !okA || !okB {
		return
	}
	action := strategy.EvaluateComposite(price, legA, legB)
	if action == signal.CompositeHold {
		return
	}
	l.log.Info().Str("action", action.String()).Float64("px", price).Msg("composite mispricing")
	if err := l.coord.TradeComposite(ctx, action, l.cfg.Composite, l.cfg.Symbols[0], l.cfg.Symbols[1]); err != nil {
		l.log.Warn().Err(err).Msg("composite trade failed")
	}
}

func (l *Loop) instruments() []string {
	out := make([]string, 0, len(l.cfg.Symbols)+1)
	out = append(out, l.cfg.Symbols...)
	if l.cfg.Composite != "" {
		out = append(out, l.cfg.Composite)
	}
	return out
}
