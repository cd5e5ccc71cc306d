package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldmark_ConvertsMarkdown(t *testing.T) {
	g := NewGoldmark(DefaultOptions())

	out, err := g.Convert("# Title\n\nHello *world*\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, "<p>Hello <em>world</em></p>")
}

func TestGoldmark_ExternalLinksOpenInNewTab(t *testing.T) {
	g := NewGoldmark(DefaultOptions())

	out, err := g.Convert("[ext](https://example.org) and [local](/about.html)\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<a href="https://example.org" target="_blank" rel="noopener noreferrer nofollow">ext</a>`)
	assert.Contains(t, out, `<a href="/about.html">local</a>`)
}

func TestGoldmark_AutoLinks(t *testing.T) {
	g := NewGoldmark(DefaultOptions())

	out, err := g.Convert("<https://example.org/x>\n")
	require.NoError(t, err)
	assert.Contains(t, out, `target="_blank"`)
}

func TestGoldmark_ExternalLinksDisabled(t *testing.T) {
	g := NewGoldmark(Options{})

	out, err := g.Convert("[ext](https://example.org)\n")
	require.NoError(t, err)
	assert.NotContains(t, out, "target=")
}

func TestGoldmark_RawHTML(t *testing.T) {
	out, err := NewGoldmark(DefaultOptions()).Convert("<div class=\"x\">raw</div>\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="x">raw</div>`)

	safe, err := NewGoldmark(Options{Safe: true}).Convert("<div class=\"x\">raw</div>\n")
	require.NoError(t, err)
	assert.NotContains(t, safe, `<div class="x">`)
}

func TestGoldmark_DefaultExtensionsIncludeTables(t *testing.T) {
	out, err := NewGoldmark(DefaultOptions()).Convert("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
}

func TestIsMarkdown(t *testing.T) {
	for _, p := range []string{"a.md", "b.MARKDOWN", "c.mdown", "d.mkdn", "e.mkd"} {
		assert.True(t, IsMarkdown(p), p)
	}
	assert.False(t, IsMarkdown("index.html"))
	assert.True(t, KnownExtension(" Footnote "))
	assert.False(t, KnownExtension("mermaid"))
}
