// Package templating renders template text against page data.
package templating

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/kiln/internal/site"
)

// ErrUnknownEngine is returned by New for unsupported engine names.
var ErrUnknownEngine = errors.New("unknown template engine")

// Engine names.
const (
	EngineLiquid     = "liquid"
	EngineGoTemplate = "gotemplate"
)

// IncludesDir is the conventional partials folder under the source root.
const IncludesDir = "_includes"

// Engine renders a template string against data.
type Engine interface {
	Name() string
	// LayoutExtensions lists the layout file extensions probed, in order.
	LayoutExtensions() []string
	Render(tpl string, data Data) (string, error)
}

// Data is everything a template can see while rendering one page context.
type Data struct {
	Content     string
	FullContent string
	Page        *site.Page
	// Bag is the render context's fork of the page bag.
	Bag *site.Bag
	// Layout is the front matter of the layout being rendered, if any.
	Layout    *site.Bag
	Previous  *site.Page
	Next      *site.Page
	Paginator *site.Paginator
	Site      *site.Context
}

// Vars flattens data into template variables.
func (d Data) Vars() map[string]any {
	page := map[string]any{}
	if d.Page != nil {
		page = d.Page.Data()
	}
	d.Bag.Range(func(k string, v site.Value) bool {
		page[k] = v.Interface()
		return true
	})
	page["content"] = d.Content
	if d.Previous != nil {
		page["previous"] = d.Previous.Data()
	}
	if d.Next != nil {
		page["next"] = d.Next.Data()
	}

	vars := map[string]any{
		"content":      d.Content,
		"full_content": d.FullContent,
		"page":         page,
		"layout":       d.Layout.Map(),
		"previous":     page["previous"],
		"next":         page["next"],
	}
	if d.Paginator != nil {
		vars["paginator"] = d.Paginator.Data()
	}
	if d.Site != nil {
		vars["site"] = d.Site.Data()
	}
	return vars
}

// New builds the named engine. includesDir is searched for partials.
func New(name string, fs afero.Fs, includesDir string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineLiquid:
		return NewPongo(fs, includesDir), nil
	case EngineGoTemplate:
		g, err := NewGoTemplate(fs, includesDir)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}
