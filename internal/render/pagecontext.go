package render

import (
	"git.home.luguber.info/inful/kiln/internal/site"
	"git.home.luguber.info/inful/kiln/internal/templating"
)

// PageContext is the working state for rendering one output file of a page.
// Paginated pages fork one context per page.
type PageContext struct {
	Page        *site.Page
	Site        *site.Context
	Bag         *site.Bag
	Content     string
	FullContent string
	Previous    *site.Page
	Next        *site.Page
	Paginator   *site.Paginator
	OutputPath  string
}

func newPageContext(s *site.Context, page *site.Page, content string, previous, next *site.Page) *PageContext {
	return &PageContext{
		Page:       page,
		Site:       s,
		Bag:        page.Bag.Clone(),
		Content:    content,
		Previous:   previous,
		Next:       next,
		OutputPath: page.OutputFile,
	}
}

// fork copies c for another page of a paginated listing.
func (c *PageContext) fork(slot Slot) *PageContext {
	out := *c
	out.Bag = c.Bag.Clone()
	out.Paginator = slot.Paginator
	out.OutputPath = slot.OutputPath
	out.Bag.Set("url", site.String(slot.URL))
	return &out
}

func (c *PageContext) data(content string, layout *site.Bag) templating.Data {
	return templating.Data{
		Content:     content,
		FullContent: c.FullContent,
		Page:        c.Page,
		Bag:         c.Bag,
		Layout:      layout,
		Previous:    c.Previous,
		Next:        c.Next,
		Paginator:   c.Paginator,
		Site:        c.Site,
	}
}
