package site

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind selects how the pipeline handles a page.
type Kind int

const (
	// Processed pages are rendered through templates, markup and layouts.
	Processed Kind = iota
	// NonProcessed pages are copied to the output verbatim.
	NonProcessed
	// Raw pages have their in-memory Content written as-is.
	Raw
)

func (k Kind) String() string {
	switch k {
	case NonProcessed:
		return "non_processed"
	case Raw:
		return "raw"
	default:
		return "processed"
	}
}

// Page is one logical content item: a post, a standalone page, an asset or a
// generated page. The render pipeline only mutates OutputFile and the
// "excerpt" key of Bag.
type Page struct {
	ID         string
	Title      string
	File       string // absolute source path
	Filepath   string // output path relative to the output folder
	OutputFile string
	Content    string
	URL        string
	Date       time.Time
	Categories []string
	Tags       []string
	Kind       Kind
	Bag        *Bag
}

// NewPage returns a processed page with an empty bag.
func NewPage(file string) *Page {
	return &Page{File: file, Bag: NewBag(), Kind: Processed}
}

// Ext returns the lower-cased source extension.
func (p *Page) Ext() string {
	return strings.ToLower(filepath.Ext(p.File))
}

// Layout returns the front-matter layout name, or "" when unset.
func (p *Page) Layout() string {
	return p.Bag.GetString("layout")
}

// Excerpt returns the stored excerpt, if any.
func (p *Page) Excerpt() string {
	return p.Bag.GetString("excerpt")
}

// Data exposes the page to template engines. Front-matter keys come first so
// that computed fields override them.
func (p *Page) Data() map[string]any {
	if p == nil {
		return nil
	}
	out := p.Bag.Map()
	out["id"] = p.ID
	out["title"] = p.Title
	out["url"] = p.URL
	out["date"] = p.Date
	out["file"] = p.File
	out["categories"] = p.Categories
	out["tags"] = p.Tags
	out["content"] = p.Content
	if ex := p.Excerpt(); ex != "" {
		out["excerpt"] = ex
	}
	return out
}

// URLFromPath converts an output-relative file path to a site URL. A trailing
// index.html collapses to its directory.
func URLFromPath(rel string) string {
	u := "/" + strings.TrimLeft(filepath.ToSlash(rel), "/")
	if dir, ok := strings.CutSuffix(u, "/index.html"); ok {
		return dir + "/"
	}
	return u
}
