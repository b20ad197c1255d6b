package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"reblogger/internal/config"
	"reblogger/internal/feed"
	"reblogger/internal/pipeline"
	"reblogger/internal/publish"
	"reblogger/internal/rewrite"
	"reblogger/internal/scrape"
	"reblogger/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "[reblogger] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.StorePath)
	if err != nil {
		logger.Fatalf("failed to open store at %s: %v", cfg.StorePath, err)
	}
	defer st.Close()

	p := pipeline.New(
		st,
		feed.NewFetcher(cfg.FeedURL, cfg.UserAgent),
		scrape.NewScraper(cfg.FetchTimeout, cfg.UserAgent, logger),
		rewrite.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBase, logger),
		publish.NewClient(ctx, cfg.BloggerClientID, cfg.BloggerClientSecret, cfg.BloggerRefreshToken, cfg.BlogID),
		logger,
		cfg.RefillCap,
		cfg.PostDelay,
	)

	if cfg.RunMode == config.ModeOnce {
		p.RunCycle(ctx)
		return
	}

	// Continuous mode: one cycle right away, then one per schedule tick.
	// SkipIfStillRunning drops a tick when the previous cycle has not
	// finished, so cycles never overlap.
	p.RunCycle(ctx)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.Schedule, func() { p.RunCycle(ctx) }); err != nil {
		logger.Fatalf("invalid schedule %q: %v", cfg.Schedule, err)
	}
	logger.Printf("scheduled with %q, waiting", cfg.Schedule)
	c.Start()

	<-ctx.Done()
	logger.Println("shutting down")
	<-c.Stop().Done()
}
