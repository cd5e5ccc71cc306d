package site

import (
	"sync"
	"time"
)

// Context is the site-wide state for one build run.
//
// Posts are ordered newest-first. Pages may be appended by generators that run
// concurrently, so access to them goes through the page lock.
type Context struct {
	SourceFolder string
	OutputFolder string
	Title        string
	Engine       string
	Time         time.Time
	Config       *Bag
	Posts        []*Page

	mu    sync.Mutex
	pages []*Page
	extra map[string]any
}

// NewContext returns a context rooted at source and output.
func NewContext(source, output string) *Context {
	return &Context{
		SourceFolder: source,
		OutputFolder: output,
		Time:         time.Now(),
		Config:       NewBag(),
		extra:        map[string]any{},
	}
}

// Pages returns a snapshot of the page collection.
func (c *Context) Pages() []*Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Page, len(c.pages))
	copy(out, c.pages)
	return out
}

// AddPage appends p.
func (c *Context) AddPage(p *Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = append(c.pages, p)
}

// SetPages replaces the page collection.
func (c *Context) SetPages(pages []*Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = pages
}

// UpdatePages runs fn with the page lock held and stores the slice it returns.
// Scans and inserts performed inside fn are atomic with respect to other writers.
func (c *Context) UpdatePages(fn func(pages []*Page) []*Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = fn(c.pages)
}

// FindPage returns the first page matching fn.
func (c *Context) FindPage(fn func(*Page) bool) *Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.pages {
		if fn(p) {
			return p
		}
	}
	for _, p := range c.Posts {
		if fn(p) {
			return p
		}
	}
	return nil
}

// SetExtra stores a generator-provided value exposed to templates under site.<key>.
func (c *Context) SetExtra(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.extra == nil {
		c.extra = map[string]any{}
	}
	c.extra[key] = value
}

// Extra returns a generator-provided value.
func (c *Context) Extra(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.extra[key]
	return v, ok
}

// Data exposes the site to template engines as the "site" variable.
func (c *Context) Data() map[string]any {
	out := c.Config.Map()
	out["title"] = c.Title
	out["time"] = c.Time
	out["source"] = c.SourceFolder
	out["destination"] = c.OutputFolder

	posts := make([]map[string]any, 0, len(c.Posts))
	for _, p := range c.Posts {
		posts = append(posts, p.Data())
	}
	out["posts"] = posts

	pages := c.Pages()
	pageData := make([]map[string]any, 0, len(pages))
	for _, p := range pages {
		pageData = append(pageData, p.Data())
	}
	out["pages"] = pageData

	c.mu.Lock()
	for k, v := range c.extra {
		out[k] = v
	}
	c.mu.Unlock()
	return out
}
