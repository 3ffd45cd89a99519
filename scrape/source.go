package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
)

// NewSource builds the listing source matching the profile's type.
func NewSource(profile *Profile, fetcher *Fetcher, summaryBudget, maxItems int) (Source, error) {
	switch profile.Type {
	case "", "html":
		return &HTMLSource{
			profile:   profile,
			fetcher:   fetcher,
			extractor: NewExtractor(profile, summaryBudget),
			maxItems:  maxItems,
		}, nil
	case "feed":
		return &FeedSource{
			profile:       profile,
			summaryBudget: summaryBudget,
			maxItems:      maxItems,
		}, nil
	default:
		return nil, fmt.Errorf("unknown profile type: %q", profile.Type)
	}
}

// Source produces candidate items from one listing, in page order, bounded
// by the configured maximum. Per-item extraction failures are skipped and
// logged; only a listing-level failure is returned as an error.
type Source interface {
	Items(ctx context.Context) ([]Item, error)
}

// HTMLSource scrapes item cards off an HTML listing page using the profile's
// cascades.
type HTMLSource struct {
	profile   *Profile
	fetcher   *Fetcher
	extractor *Extractor
	maxItems  int
}

// Items fetches and parses the listing page, locates the card nodes via the
// card cascade, and extracts each one. Cards missing a title or permalink
// are skipped, never fatal.
func (s *HTMLSource) Items(ctx context.Context) ([]Item, error) {
	body, err := s.fetcher.Fetch(ctx, s.profile.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	base, err := url.Parse(s.profile.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing URL: %w", err)
	}

	cards, spec, ok := Resolve(doc.Selection, s.profile.Selectors.Card)
	if !ok {
		return nil, errors.New("no card selector matched the listing page")
	}
	slog.Debug("Located item cards", "selector", spec.Query, "count", cards.Length())

	var items []Item
	skipped := 0
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= s.maxItems {
			return false
		}

		item, err := s.extractor.Extract(card, base)
		if err != nil {
			skipped++
			slog.Warn("Skipping card", "index", i, "error", err)
			return true
		}

		s.enrich(ctx, &item)
		items = append(items, item)
		return true
	})

	if skipped > 0 {
		slog.Info("Extraction summary", "extracted", len(items), "skipped", skipped)
	}

	if s.profile.Reverse {
		reverse(items)
	}
	return items, nil
}

// enrich performs the optional single detail-page pass when the card gave
// neither summary nor image.
func (s *HTMLSource) enrich(ctx context.Context, item *Item) {
	if !s.profile.Detail.Enabled {
		return
	}
	if item.Summary != NoSummary && item.ImageURL != "" {
		return
	}

	body, err := s.fetcher.Fetch(ctx, item.Permalink)
	if err != nil {
		slog.Warn("Detail fetch failed", "permalink", item.Permalink, "error", err)
		return
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		slog.Warn("Detail parse failed", "permalink", item.Permalink, "error", err)
		return
	}

	base, err := url.Parse(item.Permalink)
	if err != nil {
		return
	}
	s.extractor.EnrichFromDetail(item, doc.Selection, base)
}

// FeedSource reads candidates from the site's RSS or Atom feed. gofeed
// normalizes both formats, so one mapping covers them.
type FeedSource struct {
	profile       *Profile
	summaryBudget int
	maxItems      int
}

// Items fetches and parses the feed and maps entries to Items. Entries
// without a link are skipped; the feed already carries absolute URLs and
// parsed dates, so no cascades run here.
func (s *FeedSource) Items(ctx context.Context) ([]Item, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = DefaultUserAgent

	feed, err := fp.ParseURLWithContext(s.profile.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	budget := s.summaryBudget
	if budget <= 0 {
		budget = DefaultSummaryBudget
	}

	var items []Item
	for _, entry := range feed.Items {
		if len(items) >= s.maxItems {
			break
		}
		if entry.Link == "" {
			slog.Warn("Skipping feed entry without link", "title", entry.Title)
			continue
		}

		item := Item{
			ID:           uuid.New(),
			Title:        normalizeWhitespace(entry.Title),
			Summary:      NoSummary,
			Permalink:    entry.Link,
			Hashtags:     deriveHashtags(entry.Title, s.profile.Hashtags),
			DiscoveredAt: time.Now(),
		}
		if item.Title == "" {
			slog.Warn("Skipping feed entry without title", "link", entry.Link)
			continue
		}
		if desc := normalizeWhitespace(entry.Description); desc != "" {
			item.Summary = Truncate(desc, budget)
		}
		if entry.Image != nil && entry.Image.URL != "" {
			item.ImageURL = entry.Image.URL
		}
		if entry.PublishedParsed != nil {
			item.PublishedAt = entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			item.PublishedAt = entry.UpdatedParsed
		}
		item.Identity = identityFor(item.Permalink, item.Title)

		items = append(items, item)
	}

	if s.profile.Reverse {
		reverse(items)
	}
	return items, nil
}

func reverse(items []Item) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
