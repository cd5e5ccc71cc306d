package taxonomy

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/kiln/internal/config"
	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/logfields"
	"git.home.luguber.info/inful/kiln/internal/site"
)

// FolderGenerator adds one index page per category or tag.
type FolderGenerator struct {
	key    string // front-matter key naming the term
	folder string
	layout string
	extra  string // site.<extra> receives the term list
	names  func(*site.Page) []string
	options
}

// NewCategoryGenerator writes category/<slug>/index.html pages using the
// category_pages_layout layout.
func NewCategoryGenerator(cfg *config.Config, opts ...Option) *FolderGenerator {
	return &FolderGenerator{
		key:     CategoryKey,
		folder:  CategoryFolder,
		layout:  cfg.CategoryPagesLayout,
		extra:   "categories",
		names:   categoriesOf,
		options: newOptions(opts),
	}
}

// NewTagGenerator writes tag/<slug>/index.html pages using the
// tag_pages_layout layout.
func NewTagGenerator(cfg *config.Config, opts ...Option) *FolderGenerator {
	return &FolderGenerator{
		key:     TagKey,
		folder:  TagFolder,
		layout:  cfg.TagPagesLayout,
		extra:   "tags",
		names:   tagsOf,
		options: newOptions(opts),
	}
}

// Name identifies the generator in logs and metrics.
func (g *FolderGenerator) Name() string { return g.extra }

// Transform appends the index pages and publishes the terms as site.categories
// or site.tags.
func (g *FolderGenerator) Transform(ctx context.Context, s *site.Context) error {
	terms := Collect(s.Posts, g.names, g.folder)
	data := make([]map[string]any, 0, len(terms))
	for _, t := range terms {
		if err := ctx.Err(); err != nil {
			return err
		}
		bag := site.NewBag()
		bag.Set("layout", site.String(g.layout))
		bag.Set(g.key, site.String(t.Name))
		page, err := generatedPage(s, t.Name, bag, g.folder, t.Slug)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryGenerator, "failed to build index page").
				WithContext("generator", g.Name()).WithContext("term", t.Name).Build()
		}
		s.AddPage(page)
		data = append(data, t.Data())
	}
	s.SetExtra(g.extra, data)

	g.recorder.AddGeneratorItems(g.Name(), len(terms))
	g.logger.Debug("Generated index pages", logfields.Generator(g.Name()), logfields.Count(len(terms)),
		slog.String("layout", g.layout))
	return nil
}
