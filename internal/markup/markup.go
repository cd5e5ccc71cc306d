// Package markup converts lightweight markup to HTML.
package markup

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Engine converts markup source into HTML.
type Engine interface {
	Convert(source string) (string, error)
}

// Options tunes the goldmark engine.
type Options struct {
	// Extensions names goldmark extensions; empty selects the default set.
	Extensions []string
	// ExternalLinksNewTab opens absolute links in a new tab with a safe rel.
	ExternalLinksNewTab bool
	HardWraps           bool
	// Safe drops raw HTML from the output.
	Safe bool
}

// DefaultOptions mirrors a typical blog setup.
func DefaultOptions() Options {
	return Options{ExternalLinksNewTab: true}
}

var markdownExtensions = map[string]struct{}{
	".md":       {},
	".markdown": {},
	".mdown":    {},
	".mkdn":     {},
	".mkd":      {},
}

// IsMarkdown reports whether path has a markdown extension.
func IsMarkdown(path string) bool {
	_, ok := markdownExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Goldmark is the default Engine. It is safe for concurrent use.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark builds a goldmark engine from opts.
func NewGoldmark(opts Options) *Goldmark {
	parserOptions := []parser.Option{parser.WithAutoHeadingID()}
	if opts.ExternalLinksNewTab {
		parserOptions = append(parserOptions,
			parser.WithASTTransformers(util.Prioritized(externalLinks{}, 500)))
	}

	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.Safe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(collectExtensions(opts.Extensions)...),
		goldmark.WithParserOptions(parserOptions...),
		goldmark.WithRendererOptions(rendererOptions...),
	)
	return &Goldmark{md: md}
}

// Convert renders source to HTML.
func (g *Goldmark) Convert(source string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return buf.String(), nil
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// KnownExtension reports whether name is a supported extension name.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Footnote, extension.DefinitionList}
	}
	var out []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := seen[key]; dup {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ext)
	}
	return out
}
