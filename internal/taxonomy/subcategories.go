package taxonomy

import (
	"context"

	"git.home.luguber.info/inful/kiln/internal/config"
	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/logfields"
	"git.home.luguber.info/inful/kiln/internal/site"
)

// SubcategoryGenerator adds category/<category>/<subcategory>/index.html for
// every (category, subcategory) pair named by a post.
type SubcategoryGenerator struct {
	layout string
	options
}

// NewSubcategoryGenerator uses the subcategory_pages_layout layout.
func NewSubcategoryGenerator(cfg *config.Config, opts ...Option) *SubcategoryGenerator {
	return &SubcategoryGenerator{layout: cfg.SubcategoryPagesLayout, options: newOptions(opts)}
}

// Name identifies the generator in logs and metrics.
func (g *SubcategoryGenerator) Name() string { return "subcategories" }

// Transform appends one page per pair, in post order.
func (g *SubcategoryGenerator) Transform(ctx context.Context, s *site.Context) error {
	type pair struct{ category, subcategory string }
	seen := map[pair]bool{}
	n := 0
	for _, post := range s.Posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := pair{primaryCategory(post), post.Bag.GetString(SubcategoryKey)}
		if key.category == "" || key.subcategory == "" || seen[key] {
			continue
		}
		seen[key] = true

		bag := site.NewBag()
		bag.Set("layout", site.String(g.layout))
		bag.Set(CategoryKey, site.String(key.category))
		bag.Set(SubcategoryKey, site.String(key.subcategory))
		page, err := generatedPage(s, key.subcategory, bag,
			CategoryFolder, site.Slugify(key.category), site.Slugify(key.subcategory))
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryGenerator, "failed to build subcategory page").
				WithContext("category", key.category).WithContext("subcategory", key.subcategory).Build()
		}
		s.AddPage(page)
		n++
	}
	g.recorder.AddGeneratorItems(g.Name(), n)
	g.logger.Debug("Generated subcategory pages", logfields.Generator(g.Name()), logfields.Count(n))
	return nil
}
