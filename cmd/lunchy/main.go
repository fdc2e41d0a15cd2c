// Package main provides the entry point for the lunchy lunch-picking bot.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lunchybot/lunchy/internal/config"
	"github.com/lunchybot/lunchy/internal/picker"
	"github.com/lunchybot/lunchy/internal/scheduler"
	"github.com/lunchybot/lunchy/internal/session"
	"github.com/lunchybot/lunchy/internal/slack"
	"github.com/lunchybot/lunchy/internal/storage"
	"github.com/lunchybot/lunchy/internal/venue"
)

const pickJobID = "pick-restaurant"

func main() {
	os.Exit(runMain())
}

func runMain() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down gracefully...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	return 0
}

func run(ctx context.Context) error {
	log.Println("Lunchy starting...")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open restaurant store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close store", slog.Any("error", closeErr))
		}
	}()

	lookup := venue.NewFoursquareClient(
		cfg.FoursquareID, cfg.FoursquareSecret, cfg.SearchNear, cfg.SearchLimit)

	gateway, err := slack.NewClient(cfg.SlackToken,
		slack.WithAutoReconnect(cfg.AutoReconnect),
		slack.WithAutoMark(cfg.AutoMark),
	)
	if err != nil {
		return fmt.Errorf("failed to create slack gateway: %w", err)
	}

	registry := session.NewRegistry(store, lookup, gateway,
		session.WithTTL(cfg.SessionTTL))

	handler, err := slack.NewHandler(gateway, registry)
	if err != nil {
		return fmt.Errorf("failed to create message handler: %w", err)
	}

	sched := scheduler.NewCronScheduler()
	pickJob := picker.NewJob(store, picker.New(), gateway, cfg.AnnounceChannel)
	if err := sched.Schedule(scheduler.Job{
		ID:       pickJobID,
		CronExpr: cfg.PickSchedule,
		Handler:  pickJob,
	}); err != nil {
		return fmt.Errorf("failed to schedule pick job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() {
		if stopErr := sched.Stop(); stopErr != nil {
			slog.Error("failed to stop scheduler", slog.Any("error", stopErr))
		}
	}()

	log.Println("Lunchy started. Listening for messages.")

	// Blocks until the context is canceled.
	if err := handler.Start(ctx); err != nil {
		return fmt.Errorf("message handler failed: %w", err)
	}

	return nil
}
