package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedia/newswire/scrape"
)

// TestLoadProfile_EmptyPathUsesDefaults verifies running with no profile
// file at all is supported.
func TestLoadProfile_EmptyPathUsesDefaults(t *testing.T) {
	profile, err := LoadProfile("")
	require.NoError(t, err)

	assert.Equal(t, "html", profile.Type)
	assert.NotEmpty(t, profile.Selectors.Card)
	assert.NotEmpty(t, profile.ImageDenylist)
	assert.NotEmpty(t, profile.DateLayouts)
}

// TestLoadProfile_PartialFileKeepsDefaults verifies a profile only has to
// spell out what differs: omitted cascades fall back to the defaults.
func TestLoadProfile_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: example
url: https://news.example.com/gaming/
reverse: true
footer: "🍁 | @ExampleNews"
selectors:
  card:
    - query: "li.news-entry"
  title:
    - query: "h2.entry-title"
hashtags:
  - keyword: "PC"
    tag: "#PC"
`), 0o600))

	profile, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "example", profile.Name)
	assert.Equal(t, "https://news.example.com/gaming/", profile.URL)
	assert.True(t, profile.Reverse)
	assert.Equal(t, "🍁 | @ExampleNews", profile.Footer)

	// Declared cascades replace the defaults.
	require.Len(t, profile.Selectors.Card, 1)
	assert.Equal(t, "li.news-entry", profile.Selectors.Card[0].Query)
	require.Len(t, profile.Selectors.Title, 1)

	// Omitted sections keep them.
	defaults := scrape.DefaultProfile()
	assert.Equal(t, defaults.Selectors.Summary, profile.Selectors.Summary)
	assert.Equal(t, defaults.Selectors.Link, profile.Selectors.Link)
	assert.Equal(t, defaults.ImageDenylist, profile.ImageDenylist)
	assert.Equal(t, defaults.DateLayouts, profile.DateLayouts)

	require.Len(t, profile.Hashtags, 1)
	assert.Equal(t, "#PC", profile.Hashtags[0].Tag)
}

// TestLoadProfile_AttributeSelectors verifies attr specs survive the YAML
// round trip.
func TestLoadProfile_AttributeSelectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
url: https://news.example.com/
selectors:
  image:
    - query: "img.lead"
      attr: "data-src"
`), 0o600))

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	require.Len(t, profile.Selectors.Image, 1)
	assert.Equal(t, "data-src", profile.Selectors.Image[0].Attr)
}

// TestLoadProfile_MissingFile verifies an explicitly named profile must
// exist.
func TestLoadProfile_MissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// TestLoadProfile_BadYAML verifies parse failures are surfaced, not
// silently defaulted.
func TestLoadProfile_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("selectors: [not: a: map"), 0o600))

	_, err := LoadProfile(path)
	require.Error(t, err)
}
