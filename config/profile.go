package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gamedia/newswire/scrape"
)

// LoadProfile reads a source profile from a YAML file. An empty path returns
// the built-in defaults. Sections the file omits (field cascades, denylist,
// date layouts) are filled from the defaults, so a profile only has to spell
// out what actually differs for its site.
func LoadProfile(path string) (*scrape.Profile, error) {
	if path == "" {
		return scrape.DefaultProfile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var profile scrape.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}

	applyProfileDefaults(&profile)
	return &profile, nil
}

func applyProfileDefaults(profile *scrape.Profile) {
	defaults := scrape.DefaultProfile()

	if profile.Type == "" {
		profile.Type = defaults.Type
	}
	if len(profile.Selectors.Card) == 0 {
		profile.Selectors.Card = defaults.Selectors.Card
	}
	if len(profile.Selectors.Title) == 0 {
		profile.Selectors.Title = defaults.Selectors.Title
	}
	if len(profile.Selectors.Summary) == 0 {
		profile.Selectors.Summary = defaults.Selectors.Summary
	}
	if len(profile.Selectors.Image) == 0 {
		profile.Selectors.Image = defaults.Selectors.Image
	}
	if len(profile.Selectors.Link) == 0 {
		profile.Selectors.Link = defaults.Selectors.Link
	}
	if len(profile.Selectors.Date) == 0 {
		profile.Selectors.Date = defaults.Selectors.Date
	}
	if len(profile.Detail.Summary) == 0 {
		profile.Detail.Summary = defaults.Detail.Summary
	}
	if len(profile.Detail.Image) == 0 {
		profile.Detail.Image = defaults.Detail.Image
	}
	if len(profile.ImageDenylist) == 0 {
		profile.ImageDenylist = defaults.ImageDenylist
	}
	if len(profile.DateLayouts) == 0 {
		profile.DateLayouts = defaults.DateLayouts
	}
}
