package main

import (
	"context"
	"errors"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"simbot-go/internal/config"
	"simbot-go/internal/estimate"
	"simbot-go/internal/exchange"
	"simbot-go/internal/execution"
	"simbot-go/internal/metrics"
	"simbot-go/internal/risk"
	"simbot-go/internal/session"
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
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	apiKey := cfg.Exchange.APIKey
	if key, ok := exchange.LoadAPIKeyFromEnv(); ok {
		apiKey = key
	}
	client := exchange.NewClient(
		cfg.Exchange.BaseURL,
		apiKey,
		log,
		exchange.WithTimeout(time.Duration(cfg.Exchange.TimeoutMs)*time.Millisecond),
	)

	book := estimate.NewBook(cfg.News.Symbols, float64(cfg.Session.LengthTicks), cfg.Session.DecayConstant)
	limits := risk.Limits{MaxOrderSize: cfg.Trading.MaxOrderSize, MaxPosition: cfg.Trading.MaxPosition}
	coord := execution.NewCoordinator(
		execution.ClientVenue{Client: client},
		limits,
		execution.Config{OrderSize: cfg.Trading.OrderSize, CostOffset: cfg.Trading.CostOffset},
		util.Named(log, "exec"),
	)

	loop := session.New(client, book, coord, session.Config{
		Symbols:      cfg.News.Symbols,
		Composite:    cfg.News.Composite,
		CutoverTick:  cfg.Session.CutoverTick,
		PollInterval: time.Duration(cfg.Exchange.PollIntervalMs) * time.Millisecond,
	}, log)

	log.Info().Strs("symbols", cfg.News.Symbols).Str("composite", cfg.News.Composite).Msg("news engine started")
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("session ended with error")
		os.Exit(1)
	}
	log.Info().Msg("session complete")
}
