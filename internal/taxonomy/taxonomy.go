// Package taxonomy generates the category, tag and subcategory index pages
// and the category tree exposed to templates.
//
// Generators run after discovery and before rendering. Each one appends
// processed pages to the site whose front matter names a layout and the term
// the page lists, so the layout can filter site.posts itself.
package taxonomy

import (
	"log/slog"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/kiln/internal/frontmatter"
	"git.home.luguber.info/inful/kiln/internal/metrics"
	"git.home.luguber.info/inful/kiln/internal/site"
)

// Folder and front-matter key names.
const (
	CategoryFolder = "category"
	TagFolder      = "tag"
	CategoryKey    = "category"
	TagKey         = "tag"
	SubcategoryKey = "subcategory"
	indexFile      = "index.html"
)

// Term is one category or tag and the posts filed under it, newest first.
type Term struct {
	Name  string
	Slug  string
	URL   string
	Posts []*site.Page
}

// Data exposes the term to template engines.
func (t Term) Data() map[string]any {
	posts := make([]map[string]any, 0, len(t.Posts))
	for _, p := range t.Posts {
		posts = append(posts, p.Data())
	}
	return map[string]any{"name": t.Name, "slug": t.Slug, "url": t.URL, "posts": posts}
}

// Collect groups posts by the names returned for each one. Terms are sorted
// by name; posts keep their collection order.
func Collect(posts []*site.Page, names func(*site.Page) []string, folder string) []Term {
	index := map[string]int{}
	var terms []Term
	for _, post := range posts {
		seen := map[string]bool{}
		for _, name := range names(post) {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			i, ok := index[name]
			if !ok {
				slug := site.Slugify(name)
				i = len(terms)
				index[name] = i
				terms = append(terms, Term{
					Name: name,
					Slug: slug,
					URL:  site.URLFromPath(filepath.ToSlash(filepath.Join(folder, slug, indexFile))),
				})
			}
			terms[i].Posts = append(terms[i].Posts, post)
		}
	}
	sort.SliceStable(terms, func(a, b int) bool { return terms[a].Name < terms[b].Name })
	return terms
}

func categoriesOf(p *site.Page) []string { return p.Categories }
func tagsOf(p *site.Page) []string       { return p.Tags }

// primaryCategory is the front-matter category, falling back to the first
// category the post was filed under.
func primaryCategory(p *site.Page) string {
	if c := p.Bag.GetString(CategoryKey); c != "" {
		return c
	}
	if len(p.Categories) > 0 {
		return p.Categories[0]
	}
	return ""
}

// Option configures a generator.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	recorder metrics.Recorder
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) { o.recorder = metrics.OrNoop(r) }
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default(), recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// generatedPage builds an index page at <segments...>/index.html whose
// content is nothing but its front matter.
func generatedPage(s *site.Context, title string, bag *site.Bag, segments ...string) (*site.Page, error) {
	rel := filepath.Join(append(segments, indexFile)...)
	content, err := frontmatter.Render(bag, nil)
	if err != nil {
		return nil, err
	}
	p := site.NewPage(filepath.Join(s.SourceFolder, rel))
	p.ID = filepath.ToSlash(rel)
	p.Title = title
	p.Bag = bag
	p.Content = string(content)
	p.Filepath = rel
	p.OutputFile = filepath.Join(s.OutputFolder, rel)
	p.URL = site.URLFromPath(rel)
	p.Date = s.Time
	return p, nil
}
