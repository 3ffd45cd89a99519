package scrape

// Profile describes how to turn one listing page into content items. The
// cascades are data, not code: when the site's markup drifts, the profile
// file is edited and the pipeline is untouched.
type Profile struct {
	Name string `yaml:"name"`
	// Type selects the listing format: "html" scrapes cards off a listing
	// page, "feed" reads the site's RSS/Atom feed instead.
	Type string `yaml:"type"`
	URL  string `yaml:"url"`

	// Reverse processes candidates bottom-up so the oldest new item is
	// delivered first.
	Reverse bool `yaml:"reverse,omitempty"`

	Selectors ProfileSelectors `yaml:"selectors"`

	// Detail optionally fills summary/image from the item's own page when
	// the listing card yields neither. At most one detail fetch per item.
	Detail DetailConfig `yaml:"detail,omitempty"`

	// ImageDenylist lists substrings identifying non-content images (site
	// logo, social-card default, icons). Candidates matching any entry are
	// rejected.
	ImageDenylist []string `yaml:"image_denylist,omitempty"`

	// DateLayouts are Go time layouts tried in order against free-text date
	// fields. A lenient parse is attempted after all layouts fail.
	DateLayouts []string `yaml:"date_layouts,omitempty"`

	// Hashtags derive channel tags from title keywords.
	Hashtags []HashtagRule `yaml:"hashtags,omitempty"`

	// Footer is appended to every delivered message (channel signature).
	Footer string `yaml:"footer,omitempty"`
}

// ProfileSelectors holds one cascade per extracted field. Card locates the
// item containers on the listing page; the remaining cascades run inside
// each card.
type ProfileSelectors struct {
	Card    []SelectorSpec `yaml:"card"`
	Title   []SelectorSpec `yaml:"title"`
	Summary []SelectorSpec `yaml:"summary"`
	Image   []SelectorSpec `yaml:"image"`
	Link    []SelectorSpec `yaml:"link"`
	Date    []SelectorSpec `yaml:"date"`
}

// DetailConfig configures the optional per-item detail-page pass.
type DetailConfig struct {
	Enabled bool           `yaml:"enabled"`
	Summary []SelectorSpec `yaml:"summary,omitempty"`
	Image   []SelectorSpec `yaml:"image,omitempty"`
}

// HashtagRule maps a title keyword (case-insensitive substring) to a tag.
type HashtagRule struct {
	Keyword string `yaml:"keyword"`
	Tag     string `yaml:"tag"`
}

// DefaultProfile returns a profile tuned for gaming-news listing pages,
// carrying every selector variant the site has used across its redesigns.
func DefaultProfile() *Profile {
	return &Profile{
		Name: "default",
		Type: "html",
		Selectors: ProfileSelectors{
			Card: []SelectorSpec{
				{Query: "div.display-card.article"},
				{Query: "article.browse-clip"},
				{Query: "div.browse-card"},
				{Query: ".article-card"},
				{Query: "article"},
			},
			Title: []SelectorSpec{
				{Query: "h5"},
				{Query: "h3"},
				{Query: "[class*='title']"},
				{Query: ".headline"},
			},
			Summary: []SelectorSpec{
				{Query: "p.synopsis"},
				{Query: "p.browse-excerpt"},
				{Query: "[class*='excerpt']"},
				{Query: "p"},
			},
			Image: []SelectorSpec{
				{Query: "img[data-src]", Attr: "data-src"},
				{Query: "img[src]", Attr: "src"},
				{Query: "meta[property='og:image']", Attr: "content"},
			},
			Link: []SelectorSpec{
				{Query: "h3 a", Attr: "href"},
				{Query: "a.browse-link", Attr: "href"},
				{Query: "a[href]", Attr: "href"},
			},
			Date: []SelectorSpec{
				{Query: "time", Attr: "datetime"},
				{Query: "time"},
				{Query: "[class*='date']"},
			},
		},
		Detail: DetailConfig{
			Summary: []SelectorSpec{
				{Query: "meta[name='description']", Attr: "content"},
				{Query: "h2.subtitle"},
				{Query: ".article-excerpt"},
				{Query: "div.article-body p"},
			},
			Image: []SelectorSpec{
				{Query: "meta[property='og:image']", Attr: "content"},
				{Query: "img.header-img", Attr: "src"},
				{Query: ".featured-image img", Attr: "src"},
			},
		},
		ImageDenylist: []string{
			"icon", "logo", "avatar", "social", "sprite", "placeholder", "default_image",
		},
		DateLayouts: []string{
			"2006-01-02T15:04:05Z07:00",
			"January 2, 2006",
			"Jan 2, 2006",
			"2006-01-02",
		},
	}
}
