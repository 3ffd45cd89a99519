package scrape

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

// DefaultSummaryBudget is the character budget for delivered summaries.
const DefaultSummaryBudget = 150

// titleFallbackLimit bounds the card-text fallback used when no title
// selector matches.
const titleFallbackLimit = 120

// Ellipsis marks truncated text.
const Ellipsis = "..."

// ExtractionError reports that a card could not produce a usable item. It is
// a skip-this-item condition, never fatal for a run.
type ExtractionError struct {
	Field  string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed on %s: %s", e.Field, e.Reason)
}

// Extractor turns listing-page cards into Items by running the profile's
// per-field cascades and normalizing the results.
type Extractor struct {
	profile       *Profile
	summaryBudget int
}

// NewExtractor creates an extractor for the given profile. A non-positive
// summaryBudget falls back to DefaultSummaryBudget.
func NewExtractor(profile *Profile, summaryBudget int) *Extractor {
	if summaryBudget <= 0 {
		summaryBudget = DefaultSummaryBudget
	}
	return &Extractor{
		profile:       profile,
		summaryBudget: summaryBudget,
	}
}

// Extract builds an Item from one card node, resolving relative URLs against
// base. Missing title or permalink returns an *ExtractionError; every other
// missing field degrades to a default instead of failing.
func (e *Extractor) Extract(card *goquery.Selection, base *url.URL) (Item, error) {
	title := e.extractTitle(card)
	if title == "" {
		return Item{}, &ExtractionError{Field: "title", Reason: "no cascade selector matched and card text is empty"}
	}

	permalink := e.extractPermalink(card, base)
	if permalink == "" {
		return Item{}, &ExtractionError{Field: "permalink", Reason: "no usable href found"}
	}

	item := Item{
		ID:           uuid.New(),
		Title:        title,
		Summary:      e.extractSummary(card),
		ImageURL:     e.extractImage(card, base),
		Permalink:    permalink,
		PublishedAt:  e.extractDate(card),
		Hashtags:     deriveHashtags(title, e.profile.Hashtags),
		DiscoveredAt: time.Now(),
	}
	item.Identity = identityFor(item.Permalink, item.Title)

	return item, nil
}

// EnrichFromDetail fills the summary and image from the item's own page when
// the listing card yielded neither. doc is the parsed detail page.
func (e *Extractor) EnrichFromDetail(item *Item, doc *goquery.Selection, base *url.URL) {
	if item.Summary == NoSummary {
		if text, ok := ResolveValue(doc, e.profile.Detail.Summary); ok {
			item.Summary = Truncate(normalizeWhitespace(text), e.summaryBudget)
		}
	}
	if item.ImageURL == "" {
		item.ImageURL = e.firstUsableImage(doc, e.profile.Detail.Image, base)
	}
}

func (e *Extractor) extractTitle(card *goquery.Selection) string {
	if text, ok := ResolveValue(card, e.profile.Selectors.Title); ok {
		return normalizeWhitespace(text)
	}

	// No selector matched: the card's overall visible text is better than
	// dropping an otherwise usable item.
	fallback := normalizeWhitespace(card.Text())
	return Truncate(fallback, titleFallbackLimit)
}

func (e *Extractor) extractSummary(card *goquery.Selection) string {
	text, ok := ResolveValue(card, e.profile.Selectors.Summary)
	if !ok {
		return NoSummary
	}
	return Truncate(normalizeWhitespace(text), e.summaryBudget)
}

func (e *Extractor) extractPermalink(card *goquery.Selection, base *url.URL) string {
	raw, ok := ResolveValue(card, e.profile.Selectors.Link)
	if !ok {
		return ""
	}

	// Accept absolute and root-relative hrefs only; fragment-only or
	// javascript: pseudo-links are unusable downstream.
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") && !strings.HasPrefix(raw, "/") {
		return ""
	}
	return absoluteURL(raw, base)
}

func (e *Extractor) extractImage(card *goquery.Selection, base *url.URL) string {
	return e.firstUsableImage(card, e.profile.Selectors.Image, base)
}

// firstUsableImage walks the image cascade node by node. The first image a
// card exposes is often site chrome (logo, social badge), so every matched
// node is considered, not just the first, and denylisted URLs are rejected.
func (e *Extractor) firstUsableImage(root *goquery.Selection, cascade []SelectorSpec, base *url.URL) string {
	for _, spec := range cascade {
		found := ""
		root.Find(spec.Query).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			raw := spec.Value(sel)
			if raw == "" {
				return true
			}
			candidate := absoluteURL(raw, base)
			if candidate == "" || e.denylisted(candidate) {
				return true
			}
			if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
				return true
			}
			found = candidate
			return false
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func (e *Extractor) denylisted(imageURL string) bool {
	lower := strings.ToLower(imageURL)
	for _, marker := range e.profile.ImageDenylist {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

func (e *Extractor) extractDate(card *goquery.Selection) *time.Time {
	text, ok := ResolveValue(card, e.profile.Selectors.Date)
	if !ok {
		return nil
	}

	for _, layout := range e.profile.DateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}

	// Layouts exhausted; one lenient pass before giving up. Absence is the
	// orchestrator's problem, not ours.
	if t, err := dateparse.ParseAny(text); err == nil {
		return &t
	}
	return nil
}

// identityFor picks the deduplication key: the permalink when it is a
// reliable absolute URL, otherwise the normalized title. Titles can collide
// across unrelated items but survive permalink churn between fetches.
func identityFor(permalink, title string) string {
	if u, err := url.Parse(permalink); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return permalink
	}
	return normalizeWhitespace(title)
}

// deriveHashtags scans the title for configured keywords and returns the
// matching tags in rule order.
func deriveHashtags(title string, rules []HashtagRule) []string {
	if len(rules) == 0 {
		return nil
	}
	lower := strings.ToLower(title)
	var tags []string
	for _, rule := range rules {
		if rule.Keyword == "" || rule.Tag == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			tags = append(tags, rule.Tag)
		}
	}
	return tags
}

// Truncate shortens s to at most budget characters, replacing the tail with
// an ellipsis marker when anything was cut. Rune-safe.
func Truncate(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	cut := budget - len(Ellipsis)
	if cut < 0 {
		cut = 0
	}
	return strings.TrimSpace(string(runes[:cut])) + Ellipsis
}

// normalizeWhitespace collapses runs of spaces and newlines into single
// spaces and trims the result.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// absoluteURL resolves raw against base, returning "" for unparseable input.
func absoluteURL(raw string, base *url.URL) string {
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
