// Package scrape extracts content items from unstable listing-page markup.
// Every field is located by a cascade: an ordered list of candidate selectors
// tried in sequence until one yields content. Adapting to a site redesign is
// a configuration change, not a code change.
package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SelectorSpec is one entry in a cascade. Query is a CSS selector. When Attr
// is empty the node's trimmed text is read; otherwise the named attribute is
// read (e.g. "content" for meta tags, "href" for links).
type SelectorSpec struct {
	Query string `yaml:"query"`
	Attr  string `yaml:"attr,omitempty"`
}

// Value reads the spec's content from a single node: trimmed text, or the
// named attribute when Attr is set. Returns "" when the node carries nothing.
func (s SelectorSpec) Value(sel *goquery.Selection) string {
	if s.Attr != "" {
		val, _ := sel.Attr(s.Attr)
		return strings.TrimSpace(val)
	}
	return strings.TrimSpace(sel.Text())
}

// Resolve walks the cascade in priority order and returns the nodes matched
// by the first selector that yields at least one node with non-empty content.
// The winning spec is returned alongside so callers can read attributes from
// additional matched nodes. Returns ok=false when every selector is
// exhausted. Resolve is a pure query; it never mutates the document.
func Resolve(root *goquery.Selection, cascade []SelectorSpec) (*goquery.Selection, SelectorSpec, bool) {
	for _, spec := range cascade {
		matches := root.Find(spec.Query)
		if matches.Length() == 0 {
			continue
		}

		// A selector only wins if it produced actual content somewhere.
		found := false
		matches.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if spec.Value(sel) != "" {
				found = true
				return false
			}
			return true
		})
		if found {
			return matches, spec, true
		}
	}
	return nil, SelectorSpec{}, false
}

// ResolveValue runs the cascade and returns the first non-empty value from
// the winning selector's nodes.
func ResolveValue(root *goquery.Selection, cascade []SelectorSpec) (string, bool) {
	matches, spec, ok := Resolve(root, cascade)
	if !ok {
		return "", false
	}

	value := ""
	matches.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if v := spec.Value(sel); v != "" {
			value = v
			return false
		}
		return true
	})
	return value, value != ""
}
