package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"simbot-go/internal/config"
	"simbot-go/internal/exchange"
	"simbot-go/internal/execution"
	"simbot-go/internal/metrics"
	"simbot-go/internal/risk"
	"simbot-go/internal/strategy"
	"simbot-go/internal/util"
)

func main() {
	cfg, err := config.Load("internal/config/config.yaml")
	if err != nil {
		fallback := util.NewLogger("info")
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	_ = metrics.Serve(cfg.App.MetricsAddr)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	apiKey := cfg.Exchange.APIKey
	if key, ok := exchange.LoadAPIKeyFromEnv(); ok {
		apiKey = key
	}
	client := exchange.NewClient(cfg.Exchange.BaseURL, apiKey, log)

	limits := risk.Limits{MaxOrderSize: cfg.Trading.MaxOrderSize, MaxPosition: cfg.Trading.MaxPosition}
	coord := execution.NewCoordinator(
		execution.ClientVenue{Client: client},
		limits,
		execution.Config{OrderSize: cfg.Trading.OrderSize, CostOffset: cfg.Trading.CostOffset},
		util.Named(log, "exec"),
	)
	maker := strategy.NewMaker(cfg.Maker.Alpha, cfg.Maker.WindowSize, cfg.Maker.SpreadFloor, limits)
	symbol := cfg.Maker.Symbol

	interval := time.Duration(cfg.Exchange.PollIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Str("symbol", symbol).Msg("maker started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case <-ticker.C:
		}

		tick, err := client.Tick(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("tick fetch failed, skipping cycle")
			continue
		}
		if tick >= cfg.Session.CutoverTick {
			log.Info().Int("tick", tick).Msg("cutover reached, cancelling quotes")
			if err := client.CancelAll(ctx); err != nil {
				log.Error().Err(err).Msg("cancel all failed")
			}
			return
		}

		history, err := client.PriceHistory(ctx, symbol, cfg.Maker.HistoryLimit)
		if err != nil {
			log.Warn().Err(err).Msg("history fetch failed")
			continue
		}
		spread, ok := maker.Spread(history)
		if !ok {
			continue
		}

		// Stale or lopsided quotes get pulled before requoting.
		open, err := client.OpenOrders(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("open orders fetch failed")
			continue
		}
		if len(open) > 0 && len(open) != 2 {
			if err := client.CancelAll(ctx); err != nil {
				log.Warn().Err(err).Msg("cancel all failed")
				continue
			}
		}

		position, err := client.Position(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Msg("position fetch failed")
			continue
		}
		lastPrice, err := client.LastPrice(ctx, symbol)
		if err != nil {
			log.Debug().Err(err).Msg("no trades yet")
			continue
		}

		for _, order := range maker.Quotes(symbol, position, lastPrice, spread) {
			if err := coord.Submit(ctx, order); err != nil {
				log.Warn().Err(err).Str("sym", order.Symbol).Msg("quote submission failed")
			}
		}
	}
}
