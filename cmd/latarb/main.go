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
	arb := strategy.NewLatencyArb(limits)

	interval := time.Duration(cfg.Exchange.PollIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Str("primary", cfg.Latency.Primary).Str("alternate", cfg.Latency.Alternate).Msg("latency arb started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Float64("edge", arb.RealizedEdge()).Msg("shutting down")
			return
		case <-ticker.C:
		}

		tick, err := client.Tick(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("tick fetch failed, skipping cycle")
			continue
		}
		if tick < cfg.Latency.MinTick {
			continue
		}
		if tick >= cfg.Latency.MaxTick {
			log.Info().Int("tick", tick).Float64("edge", arb.RealizedEdge()).Msg("window closed")
			return
		}

		primary, err := client.BidAsk(ctx, cfg.Latency.Primary)
		if err != nil {
			log.Warn().Err(err).Msg("primary book fetch failed")
			continue
		}
		alt, err := client.BidAsk(ctx, cfg.Latency.Alternate)
		if err != nil {
			log.Warn().Err(err).Msg("alternate book fetch failed")
			continue
		}

		for _, order := range arb.Evaluate(primary, alt) {
			if err := coord.Submit(ctx, order); err != nil {
				log.Warn().Err(err).Str("sym", order.Symbol).Msg("leg submission failed")
			}
		}
	}
}
