package build

import (
	"context"
	"log/slog"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/kiln/internal/activitypub"
	"git.home.luguber.info/inful/kiln/internal/config"
	"git.home.luguber.info/inful/kiln/internal/gallery"
	"git.home.luguber.info/inful/kiln/internal/metrics"
	"git.home.luguber.info/inful/kiln/internal/site"
	"git.home.luguber.info/inful/kiln/internal/taxonomy"
)

// Transform mutates or extends the site. Before-processing transforms may
// add pages; after-processing transforms read the rendered site.
type Transform interface {
	Name() string
	Transform(ctx context.Context, s *site.Context) error
}

// TransformFunc adapts a function to Transform.
type TransformFunc struct {
	Label string
	Fn    func(ctx context.Context, s *site.Context) error
}

func (f TransformFunc) Name() string { return f.Label }

func (f TransformFunc) Transform(ctx context.Context, s *site.Context) error { return f.Fn(ctx, s) }

// BeforeProcessing returns the generators that run between discovery and
// rendering: category and tag folders, subcategories with the category tree
// when enabled, then image galleries.
func BeforeProcessing(fs afero.Fs, cfg *config.Config, logger *slog.Logger, recorder metrics.Recorder) []Transform {
	opts := []taxonomy.Option{taxonomy.WithLogger(logger), taxonomy.WithRecorder(recorder)}
	ts := []Transform{
		taxonomy.NewCategoryGenerator(cfg, opts...),
		taxonomy.NewTagGenerator(cfg, opts...),
	}
	if cfg.EnableSubcategories {
		ts = append(ts, taxonomy.NewSubcategoryGenerator(cfg, opts...), taxonomy.NewTreeBuilder(opts...))
	}
	return append(ts, gallery.New(fs, cfg, logger, recorder))
}

// AfterProcessing returns the writers that run once every page is rendered.
func AfterProcessing(fs afero.Fs, cfg *config.Config, logger *slog.Logger, recorder metrics.Recorder) ([]Transform, error) {
	w, err := activitypub.NewWriter(fs, cfg, logger, recorder)
	if err != nil {
		return nil, err
	}
	return []Transform{w}, nil
}
