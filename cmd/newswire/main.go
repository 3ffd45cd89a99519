// Command newswire runs one scrape-and-deliver pass: fetch the configured
// listing, extract new items, and post them to the Telegram channel. It is
// meant to be invoked from cron; a non-zero exit signals the scheduler that
// the run failed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gamedia/newswire/config"
	"github.com/gamedia/newswire/dedup"
	"github.com/gamedia/newswire/delivery"
	"github.com/gamedia/newswire/pipeline"
	"github.com/gamedia/newswire/scrape"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if settings == nil {
		// Help was shown.
		return
	}

	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(settings); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func run(settings *config.Settings) error {
	profile, err := config.LoadProfile(settings.ProfilePath)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if settings.ListingURL != "" {
		profile.URL = settings.ListingURL
	}
	if profile.URL == "" {
		return fmt.Errorf("no listing URL configured (set --url or the profile's url)")
	}

	if settings.LockPath != "" {
		release, err := dedup.AcquireLock(settings.LockPath)
		if err != nil {
			return err
		}
		defer release()
	}

	fetcher := scrape.NewFetcher(settings.FetchTimeout(), settings.UserAgent, settings.RetryDelay())

	source, err := scrape.NewSource(profile, fetcher, settings.SummaryBudget, settings.MaxItems)
	if err != nil {
		return err
	}

	channel, err := delivery.NewTelegramChannel(settings.BotToken, settings.Channel, settings.SendTimeout())
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	engine := delivery.NewEngine(channel, fetcher.Probe, delivery.RetryPolicy{
		MaxAttempts: settings.RetryAttempts,
		Delay:       settings.RetryDelay(),
	})

	p := pipeline.New(
		source,
		dedup.NewStore(settings.StatePath),
		engine,
		delivery.NewFormatter(profile.Footer),
		pipeline.Options{
			MaxDeliveries:      settings.MaxDeliveries,
			InterDeliveryDelay: settings.DeliveryDelay(),
			FreshOnly:          settings.TodayOnly,
		},
	)

	result, err := p.Run(context.Background())
	if err != nil {
		return err
	}
	if result.Halted {
		return fmt.Errorf("run halted by permanent channel failure: %w", result.HaltReason)
	}
	return nil
}
