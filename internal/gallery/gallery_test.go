package gallery

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/kiln/internal/config"
	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/site"
)

func writePNG(t *testing.T, fs afero.Fs, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func imagePage(path string) *site.Page {
	p := site.NewPage(path)
	p.Kind = site.NonProcessed
	rel, _ := filepath.Rel("/src", path)
	p.ID = filepath.ToSlash(rel)
	p.URL = site.URLFromPath(rel)
	return p
}

func setup(t *testing.T, galleryYAML string) (afero.Fs, *site.Context, *site.Page, *Generator) {
	t.Helper()
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "/src/photos/a.png", 40, 20)
	writePNG(t, fs, "/src/photos/b.png", 40, 20)
	require.NoError(t, afero.WriteFile(fs, "/src/_galleries/trip.yml", []byte(galleryYAML), 0o644))

	s := site.NewContext("/src", "/out")
	s.SetPages([]*site.Page{imagePage("/src/photos/a.png"), imagePage("/src/photos/b.png")})
	post := site.NewPage("/src/_posts/2024-01-01-trip.md")
	post.ID = "trip"
	post.Bag.Set(SettingKey, site.String("_galleries/trip.yml"))
	s.Posts = []*site.Page{post}

	cfg, err := config.Parse([]byte("gallery_workers: 2\n"))
	require.NoError(t, err)
	return fs, s, post, New(fs, cfg, nil, nil)
}

const tripGallery = `input_image_directory: photos
thumbnail_output_folder: thumbs
thumbnail_scale: 0.5
default_image_path: a.png
images:
  - file_name: b.png
    alt: Bee
  - file_name: a.png
    caption: Ay
    thumbnail_scale: 0.25
  - file_name: gone.png
`

func TestGenerator_BuildsOrderedGalleryData(t *testing.T) {
	fs, s, post, g := setup(t, tripGallery)

	require.NoError(t, g.Transform(context.Background(), s))

	raw, ok := post.Bag.Get(DataKey)
	require.True(t, ok)
	items, err := raw.AsList()
	require.NoError(t, err)
	require.Len(t, items, 3)

	first, err := items[0].AsMap()
	require.NoError(t, err)
	assert.Equal(t, "b.png", first.GetString("file_name"))
	assert.Equal(t, "Bee", first.GetString("alt"))
	assert.Equal(t, "/photos/b.png", first.GetString("original_url"))
	assert.Equal(t, "/thumbs/b_thumb.jpg", first.GetString("thumbnail_url"))
	assert.Equal(t, "20", first.GetString("thumbnail_width"))
	assert.Equal(t, "10", first.GetString("thumbnail_height"))
	assert.Equal(t, "40", first.GetString("original_width"))

	second, err := items[1].AsMap()
	require.NoError(t, err)
	assert.Equal(t, "a.png", second.GetString("file_name"))
	assert.Equal(t, "10", second.GetString("thumbnail_width"))
	assert.Equal(t, "5", second.GetString("thumbnail_height"))

	third, err := items[2].AsMap()
	require.NoError(t, err)
	assert.Equal(t, "gone.png", third.GetString("file_name"))
	assert.Equal(t, "/photos/a.png", third.GetString("original_url"))
	assert.Equal(t, "/thumbs/gone_thumb.jpg", third.GetString("thumbnail_url"))

	thumb := s.FindPage(func(p *site.Page) bool { return p.ID == "trip-b.png" })
	require.NotNil(t, thumb)
	assert.Equal(t, site.NonProcessed, thumb.Kind)
	assert.Equal(t, filepath.Join("/src", config.DefaultThumbnailWorkDir, "b_thumb.jpg"), thumb.File)
	assert.Equal(t, filepath.Join("/out", "thumbs", "b_thumb.jpg"), thumb.OutputFile)
	assert.Equal(t, "nil", thumb.Layout())
	assert.Len(t, s.Pages(), 5)

	exists, err := afero.Exists(fs, thumb.File)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGenerator_RerunReusesThumbnails(t *testing.T) {
	_, s, post, g := setup(t, tripGallery)
	require.NoError(t, g.Transform(context.Background(), s))
	first, _ := post.Bag.Get(DataKey)

	require.NoError(t, g.Transform(context.Background(), s))
	second, _ := post.Bag.Get(DataKey)
	assert.True(t, first.Equal(second))
}

func TestGenerator_MissingImageWithoutDefault(t *testing.T) {
	_, s, _, g := setup(t, "input_image_directory: photos\nthumbnail_output_folder: thumbs\nimages:\n  - file_name: gone.png\n")
	err := g.Transform(context.Background(), s)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
	assert.Contains(t, err.Error(), "default_image_path is not specified")
}

func TestGenerator_OriginalPageMissing(t *testing.T) {
	_, s, _, g := setup(t, "input_image_directory: photos\nthumbnail_output_folder: thumbs\nimages:\n  - file_name: a.png\n")
	s.SetPages(nil)
	err := g.Transform(context.Background(), s)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryGenerator))
}

func TestGenerator_EmptySetting(t *testing.T) {
	_, s, post, g := setup(t, tripGallery)
	post.Bag.Set(SettingKey, site.String(""))
	err := g.Transform(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no value specified in image_gallery")
}

func TestConfig_Validate(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src/photos", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/src/g.yml", []byte(`input_image_directory: nowhere
thumbnail_scale: 150
images:
  - alt: no file
  - file_name: x.png
    thumbnail_scale: -1
`), 0o644))

	cfg, err := LoadConfig(fs, "/src/g.yml")
	require.NoError(t, err)
	assert.Equal(t, "g", cfg.ID)
	assert.Equal(t, 1, cfg.Images[1].Index)

	err = cfg.Validate(fs, "/src")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	for _, want := range []string{
		"directory 'nowhere' does not exist",
		"thumbnail_scale: must be between 0 and 100",
		"thumbnail_output_folder: can not be null or empty",
		"images[0].file_name: can not be null or empty",
		"images[1].thumbnail_scale",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestConfig_DefaultScaleAndThumbnailName(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/g.yml", []byte("id: trip\nimages:\n  - file_name: sub/IMG_1.jpeg\n"), 0o644))
	cfg, err := LoadConfig(fs, "/g.yml")
	require.NoError(t, err)
	assert.Equal(t, "trip", cfg.ID)
	assert.InDelta(t, DefaultThumbnailScale, cfg.ThumbnailScale, 1e-9)
	assert.Equal(t, "IMG_1_thumb.jpg", cfg.Images[0].ThumbnailFileName())
	assert.InDelta(t, 0.75, cfg.Images[0].Scale(cfg.ThumbnailScale), 1e-9)
}

func TestScaledSize(t *testing.T) {
	w, h := scaledSize(200, 100, 0.5)
	assert.Equal(t, []int{100, 50}, []int{w, h})
	w, h = scaledSize(200, 100, 25)
	assert.Equal(t, []int{50, 25}, []int{w, h})
	w, h = scaledSize(3, 3, 0)
	assert.Equal(t, []int{1, 1}, []int{w, h})
}
