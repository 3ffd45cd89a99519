// Package pipeline drives one scheduled pass: ingest the listing, filter
// against the dedup store, deliver new items in page order, and commit each
// delivery. One run corresponds to one cron invocation; there is no
// concurrency within a run, so rate limiting and the commit sequence stay
// deterministic and a permanent failure halts cleanly.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gamedia/newswire/dedup"
	"github.com/gamedia/newswire/delivery"
	"github.com/gamedia/newswire/scrape"
)

// Source produces the run's candidate items in page order.
type Source interface {
	Items(ctx context.Context) ([]scrape.Item, error)
}

// Options tune one run.
type Options struct {
	// WindowKey overrides the deduplication window; empty means the current
	// UTC calendar date.
	WindowKey string
	// MaxDeliveries caps successful deliveries per run. Zero means no cap
	// beyond the source's candidate bound.
	MaxDeliveries int
	// InterDeliveryDelay is the minimum spacing between deliveries, a
	// courtesy rate limit toward the destination channel.
	InterDeliveryDelay time.Duration
	// FreshOnly drops items whose published date falls outside the current
	// window. Items without a parseable date are still delivered; absence
	// is not staleness.
	FreshOnly bool
}

// Result summarizes one run.
type Result struct {
	RunID         uuid.UUID
	Candidates    int
	Duplicates    int
	Stale         int
	DeliveredRich int
	DeliveredText int
	Failed        int
	// Halted is set when a permanent channel failure stopped the run before
	// the candidate list was exhausted.
	Halted     bool
	HaltReason error
}

// Delivered returns the total number of messages placed in the channel.
func (r *Result) Delivered() int {
	return r.DeliveredRich + r.DeliveredText
}

// Pipeline wires the source, dedup store, formatter, and delivery engine
// into one run loop.
type Pipeline struct {
	source    Source
	store     *dedup.Store
	engine    *delivery.Engine
	formatter *delivery.Formatter
	opts      Options
}

// New creates a pipeline.
func New(source Source, store *dedup.Store, engine *delivery.Engine, formatter *delivery.Formatter, opts Options) *Pipeline {
	return &Pipeline{
		source:    source,
		store:     store,
		engine:    engine,
		formatter: formatter,
		opts:      opts,
	}
}

// Run executes one pass. The returned error is fatal-for-run (listing
// ingest failed); per-item failures are counted in the Result instead.
// Dedup commits happen only after confirmed delivery, so a crash mid-run
// leaves undelivered items to be re-discovered next run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.New()}

	window := p.opts.WindowKey
	if window == "" {
		window = dedup.Window(time.Now())
	}

	slog.Info("Run started", "run_id", result.RunID, "window", window)

	if err := p.store.Load(); err != nil {
		return result, fmt.Errorf("failed to load dedup state: %w", err)
	}

	items, err := p.source.Items(ctx)
	if err != nil {
		return result, fmt.Errorf("listing ingest failed: %w", err)
	}
	result.Candidates = len(items)

	for _, item := range items {
		if p.opts.MaxDeliveries > 0 && result.Delivered() >= p.opts.MaxDeliveries {
			slog.Info("Delivery cap reached", "cap", p.opts.MaxDeliveries)
			break
		}

		if p.store.IsDuplicate(item.Identity, window) {
			result.Duplicates++
			slog.Debug("Skipping duplicate", "identity", item.Identity, "status", delivery.StatusSkippedDuplicate)
			continue
		}

		if p.opts.FreshOnly && item.PublishedAt != nil && dedup.Window(*item.PublishedAt) != window {
			result.Stale++
			slog.Debug("Skipping stale item", "identity", item.Identity, "published", *item.PublishedAt)
			continue
		}

		outcome := p.engine.Deliver(ctx, item, p.formatter.Format(item))
		switch outcome.Status {
		case delivery.StatusDeliveredRich, delivery.StatusDeliveredText:
			if outcome.Status == delivery.StatusDeliveredRich {
				result.DeliveredRich++
			} else {
				result.DeliveredText++
			}
			slog.Info("Delivered", "identity", item.Identity, "status", outcome.Status, "attempts", outcome.Attempts)

			p.store.Commit(item.Identity, window)
			if err := p.store.Flush(); err != nil {
				slog.Error("Failed to persist dedup state", "error", err)
			}

			if !p.pause(ctx) {
				p.logSummary(result)
				return result, nil
			}

		case delivery.StatusFailedPermanent:
			// This failure recurs for every item; retrying the rest of the
			// list would only burn the retry budget.
			result.Failed++
			result.Halted = true
			result.HaltReason = outcome.Reason
			slog.Error("Permanent channel failure, halting run", "identity", item.Identity, "error", outcome.Reason)
			p.logSummary(result)
			return result, nil

		default:
			result.Failed++
			slog.Error("Delivery exhausted, item will be retried next run",
				"identity", item.Identity, "attempts", outcome.Attempts, "error", outcome.Reason)
		}
	}

	p.logSummary(result)
	return result, nil
}

// pause enforces the inter-delivery spacing. Returns false when the context
// ended during the wait.
func (p *Pipeline) pause(ctx context.Context) bool {
	if p.opts.InterDeliveryDelay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(p.opts.InterDeliveryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (p *Pipeline) logSummary(result *Result) {
	slog.Info("Run completed",
		"run_id", result.RunID,
		"candidates", result.Candidates,
		"duplicates", result.Duplicates,
		"stale", result.Stale,
		"delivered_rich", result.DeliveredRich,
		"delivered_text", result.DeliveredText,
		"failed", result.Failed,
		"halted", result.Halted)
}
