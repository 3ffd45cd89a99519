package scrape

import (
	"time"

	"github.com/google/uuid"
)

// NoSummary is the sentinel used when no cascade yields summary text.
const NoSummary = "No summary available."

// Item is one extracted, normalized content record. Items are constructed
// once per pipeline pass and immutable thereafter.
type Item struct {
	ID           uuid.UUID  `json:"id"`
	Identity     string     `json:"identity"`
	Title        string     `json:"title"`
	Summary      string     `json:"summary"`
	ImageURL     string     `json:"image_url,omitempty"`
	Permalink    string     `json:"permalink"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	Hashtags     []string   `json:"hashtags,omitempty"`
	DiscoveredAt time.Time  `json:"discovered_at"`
}
