package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Selection
}

// TestResolve_FirstSelectorWins verifies that when several cascade entries
// would match, the earliest one is used.
func TestResolve_FirstSelectorWins(t *testing.T) {
	root := parseHTML(t, `
		<div>
			<h5>Primary Title</h5>
			<h3>Secondary Title</h3>
		</div>`)

	cascade := []SelectorSpec{
		{Query: "h5"},
		{Query: "h3"},
	}

	matches, spec, ok := Resolve(root, cascade)
	require.True(t, ok)
	assert.Equal(t, "h5", spec.Query)
	assert.Equal(t, "Primary Title", strings.TrimSpace(matches.First().Text()))
}

// TestResolve_SkipsEmptyMatches verifies that a selector matching only
// content-free nodes does not win the cascade.
func TestResolve_SkipsEmptyMatches(t *testing.T) {
	root := parseHTML(t, `
		<div>
			<h5>   </h5>
			<h3>Real Title</h3>
		</div>`)

	cascade := []SelectorSpec{
		{Query: "h5"},
		{Query: "h3"},
	}

	_, spec, ok := Resolve(root, cascade)
	require.True(t, ok)
	assert.Equal(t, "h3", spec.Query)
}

// TestResolve_Exhausted verifies that a fully exhausted cascade reports no
// match rather than an empty one.
func TestResolve_Exhausted(t *testing.T) {
	root := parseHTML(t, `<div><p>text</p></div>`)

	cascade := []SelectorSpec{
		{Query: "h1"},
		{Query: ".missing"},
	}

	_, _, ok := Resolve(root, cascade)
	assert.False(t, ok)

	_, ok = ResolveValue(root, cascade)
	assert.False(t, ok)
}

// TestResolve_AttributeSpec verifies that attribute specs read the named
// attribute instead of element text.
func TestResolve_AttributeSpec(t *testing.T) {
	root := parseHTML(t, `
		<head><meta property="og:image" content="https://cdn.example.com/lead.jpg"></head>`)

	value, ok := ResolveValue(root, []SelectorSpec{
		{Query: "meta[property='og:image']", Attr: "content"},
	})
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/lead.jpg", value)
}

// TestResolveValue_FirstNonEmptyNode verifies that the winning selector's
// nodes are scanned for the first one carrying content.
func TestResolveValue_FirstNonEmptyNode(t *testing.T) {
	root := parseHTML(t, `
		<div>
			<a href=""></a>
			<a href="/news/story">read</a>
		</div>`)

	value, ok := ResolveValue(root, []SelectorSpec{
		{Query: "a", Attr: "href"},
	})
	require.True(t, ok)
	assert.Equal(t, "/news/story", value)
}

// TestSelectorSpec_Value covers the text/attribute read modes directly.
func TestSelectorSpec_Value(t *testing.T) {
	root := parseHTML(t, `<p class="x" data-src=" /img.png ">  hello  world </p>`)
	node := root.Find("p.x")

	assert.Equal(t, "hello  world", SelectorSpec{Query: "p"}.Value(node))
	assert.Equal(t, "/img.png", SelectorSpec{Query: "p", Attr: "data-src"}.Value(node))
	assert.Equal(t, "", SelectorSpec{Query: "p", Attr: "missing"}.Value(node))
}
