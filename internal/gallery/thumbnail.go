package gallery

import (
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"math"

	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"  // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

// jpegQuality is used for every thumbnail.
const jpegQuality = 85

// Dimensions are pixel sizes of an original image and its thumbnail.
type Dimensions struct {
	OriginalWidth   int
	OriginalHeight  int
	ThumbnailWidth  int
	ThumbnailHeight int
}

// scaledSize applies scale to w x h. Scales above 1 are percentages. Neither
// side drops below one pixel.
func scaledSize(w, h int, scale float64) (int, int) {
	if scale > 1 {
		scale /= 100
	}
	tw := int(math.Round(float64(w) * scale))
	th := int(math.Round(float64(h) * scale))
	return max(tw, 1), max(th, 1)
}

// WriteThumbnail decodes src, scales it and writes a JPEG to dst. An existing
// dst at least as new as src and already at the scaled size is kept.
func WriteThumbnail(fs afero.Fs, src, dst string, scale float64) (Dimensions, error) {
	if fresh, err := isFresh(fs, src, dst); err == nil && fresh {
		if d, err := readDimensions(fs, src, dst); err == nil {
			tw, th := scaledSize(d.OriginalWidth, d.OriginalHeight, scale)
			if tw == d.ThumbnailWidth && th == d.ThumbnailHeight {
				return d, nil
			}
		}
	}

	f, err := fs.Open(src)
	if err != nil {
		return Dimensions{}, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("decode %s: %w", src, err)
	}

	b := img.Bounds()
	tw, th := scaledSize(b.Dx(), b.Dy(), scale)
	thumb := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(thumb, thumb.Bounds(), img, b, draw.Src, nil)

	out, err := fs.Create(dst)
	if err != nil {
		return Dimensions{}, err
	}
	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = out.Close()
		return Dimensions{}, fmt.Errorf("encode %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return Dimensions{}, err
	}
	return Dimensions{OriginalWidth: b.Dx(), OriginalHeight: b.Dy(), ThumbnailWidth: tw, ThumbnailHeight: th}, nil
}

func isFresh(fs afero.Fs, src, dst string) (bool, error) {
	si, err := fs.Stat(src)
	if err != nil {
		return false, err
	}
	di, err := fs.Stat(dst)
	if err != nil {
		return false, err
	}
	return !di.ModTime().Before(si.ModTime()), nil
}

func readDimensions(fs afero.Fs, src, dst string) (Dimensions, error) {
	sc, err := decodeConfig(fs, src)
	if err != nil {
		return Dimensions{}, err
	}
	dc, err := decodeConfig(fs, dst)
	if err != nil {
		return Dimensions{}, err
	}
	return Dimensions{OriginalWidth: sc.Width, OriginalHeight: sc.Height, ThumbnailWidth: dc.Width, ThumbnailHeight: dc.Height}, nil
}

func decodeConfig(fs afero.Fs, path string) (image.Config, error) {
	f, err := fs.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}
