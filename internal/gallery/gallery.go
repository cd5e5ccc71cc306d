// Package gallery turns image_gallery front matter into thumbnails and the
// image_gallery_data list templates iterate over.
//
// Thumbnails for one gallery are produced in parallel. Each worker registers
// its thumbnail page and looks up the original image page while holding the
// site page lock, so concurrent workers never observe a half-updated page
// list.
package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/kiln/internal/config"
	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/logfields"
	"git.home.luguber.info/inful/kiln/internal/metrics"
	"git.home.luguber.info/inful/kiln/internal/site"
)

// Front-matter keys.
const (
	SettingKey = "image_gallery"
	DataKey    = "image_gallery_data"
)

// Image is one rendered gallery entry.
type Image struct {
	Info            ImageInfo
	OriginalFile    string
	OriginalURL     string
	ThumbnailURL    string
	OriginalWidth   int
	OriginalHeight  int
	ThumbnailWidth  int
	ThumbnailHeight int
}

// Value converts the entry to the ordered shape stored in the page bag.
func (i Image) Value() site.Value {
	b := site.NewBag()
	b.Set("index", site.Int(int64(i.Info.Index)))
	b.Set("file_name", site.String(i.Info.FileName))
	b.Set("alt", site.String(i.Info.Alt))
	b.Set("caption", site.String(i.Info.Caption))
	b.Set("original_url", site.String(i.OriginalURL))
	b.Set("original_width", site.Int(int64(i.OriginalWidth)))
	b.Set("original_height", site.Int(int64(i.OriginalHeight)))
	b.Set("thumbnail_url", site.String(i.ThumbnailURL))
	b.Set("thumbnail_width", site.Int(int64(i.ThumbnailWidth)))
	b.Set("thumbnail_height", site.Int(int64(i.ThumbnailHeight)))
	return site.Map(b)
}

// Generator builds galleries for every post and page naming one.
type Generator struct {
	fs       afero.Fs
	workDir  string
	workers  int
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New returns a Generator. Thumbnails are written below
// <source>/<thumbnail_work_dir> and at most gallery_workers are made at once.
func New(fs afero.Fs, cfg *config.Config, logger *slog.Logger, recorder metrics.Recorder) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.GalleryWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Generator{
		fs:       fs,
		workDir:  cfg.ThumbnailWorkDir,
		workers:  workers,
		logger:   logger,
		recorder: metrics.OrNoop(recorder),
	}
}

// Name identifies the generator in logs and metrics.
func (g *Generator) Name() string { return "image_gallery" }

// Transform processes posts first, then a snapshot of the pages taken before
// any thumbnail page is added.
func (g *Generator) Transform(ctx context.Context, s *site.Context) error {
	work := filepath.Join(s.SourceFolder, g.workDir)
	items := append(append([]*site.Page{}, s.Posts...), s.Pages()...)
	for _, page := range items {
		if !page.Bag.Has(SettingKey) {
			continue
		}
		if err := g.addGallery(ctx, s, work, page); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) addGallery(ctx context.Context, s *site.Context, work string, page *site.Page) error {
	setting := page.Bag.GetString(SettingKey)
	if setting == "" {
		return ferrors.GeneratorError(fmt.Sprintf("no value specified in %s on page %s", SettingKey, page.ID)).
			WithContext("page", page.ID).Build()
	}
	cfgPath := filepath.Join(s.SourceFolder, setting)
	cfg, err := LoadConfig(g.fs, cfgPath)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryGenerator, "failed to load image gallery").
			WithContext("page", page.ID).WithContext("path", cfgPath).Build()
	}
	if err := cfg.Validate(g.fs, s.SourceFolder); err != nil {
		return err
	}

	if err := g.fs.MkdirAll(work, 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create thumbnail folder").
			WithContext("path", work).Build()
	}

	inputDir := filepath.Join(s.SourceFolder, cfg.InputImageDirectory)
	defaultImage := ""
	if cfg.DefaultImagePath != "" {
		defaultImage = filepath.Clean(filepath.Join(inputDir, cfg.DefaultImagePath))
	}

	g.logger.Info("Generating image gallery thumbnails",
		logfields.Gallery(cfg.ID), logfields.Page(page.ID), logfields.Count(len(cfg.Images)))

	var (
		mu      sync.Mutex
		results = make([]Image, 0, len(cfg.Images))
	)
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, info := range cfg.Images {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			img, err := g.thumbnail(s, cfg, work, inputDir, defaultImage, info)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, img)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Info.Index < results[j].Info.Index })
	values := make([]site.Value, 0, len(results))
	for _, r := range results {
		values = append(values, r.Value())
	}
	page.Bag.Set(DataKey, site.List(values...))
	g.recorder.AddGeneratorItems(g.Name(), len(results))
	return nil
}

func (g *Generator) thumbnail(s *site.Context, cfg *Config, work, inputDir, defaultImage string, info ImageInfo) (Image, error) {
	original := filepath.Clean(filepath.Join(inputDir, info.FileName))
	if ok, _ := afero.Exists(g.fs, original); !ok {
		if defaultImage == "" {
			return Image{}, ferrors.FileSystemError(fmt.Sprintf("can not find image '%s', and default_image_path is not specified", original)).
				WithContext("gallery", cfg.ID).Build()
		}
		g.logger.Warn("Image does not exist, using default image",
			logfields.Gallery(cfg.ID), logfields.File(original))
		original = defaultImage
	}

	name := info.ThumbnailFileName()
	dst := filepath.Join(work, name)
	dims, err := WriteThumbnail(g.fs, original, dst, info.Scale(cfg.ThumbnailScale))
	if err != nil {
		return Image{}, ferrors.WrapError(err, ferrors.CategoryGenerator, "failed to generate thumbnail").
			WithContext("gallery", cfg.ID).WithContext("path", original).Build()
	}

	rel := filepath.Join(cfg.ThumbnailOutputFolder, name)
	thumb := site.NewPage(dst)
	thumb.ID = cfg.ID + "-" + info.FileName
	thumb.Kind = site.NonProcessed
	thumb.Filepath = rel
	thumb.OutputFile = filepath.Join(s.OutputFolder, rel)
	thumb.URL = site.URLFromPath(rel)
	thumb.Bag.Set("layout", site.String("nil"))

	var originalPage *site.Page
	s.UpdatePages(func(pages []*site.Page) []*site.Page {
		pages = append(pages, thumb)
		for _, p := range pages {
			if filepath.Clean(p.File) == original {
				originalPage = p
				break
			}
		}
		return pages
	})
	if originalPage == nil {
		return Image{}, ferrors.GeneratorError(fmt.Sprintf("can not locate original image to thumbnail: %s", info.FileName)).
			WithContext("gallery", cfg.ID).Build()
	}

	return Image{
		Info:            info,
		OriginalFile:    original,
		OriginalURL:     originalPage.URL,
		ThumbnailURL:    thumb.URL,
		OriginalWidth:   dims.OriginalWidth,
		OriginalHeight:  dims.OriginalHeight,
		ThumbnailWidth:  dims.ThumbnailWidth,
		ThumbnailHeight: dims.ThumbnailHeight,
	}, nil
}
