package gallery

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/kiln/internal/foundation"
)

// DefaultThumbnailScale shrinks thumbnails to three quarters of the original.
const DefaultThumbnailScale = 0.75

// Config describes one gallery. It is read from the YAML file named by a
// page's image_gallery key.
type Config struct {
	ID                    string      `yaml:"id"`
	InputImageDirectory   string      `yaml:"input_image_directory"`
	ThumbnailOutputFolder string      `yaml:"thumbnail_output_folder"`
	ThumbnailScale        float64     `yaml:"thumbnail_scale"`
	DefaultImagePath      string      `yaml:"default_image_path,omitempty"`
	Images                []ImageInfo `yaml:"images"`
}

// ImageInfo is one image entry. Index is its position in the file.
type ImageInfo struct {
	Index          int      `yaml:"-"`
	FileName       string   `yaml:"file_name"`
	Alt            string   `yaml:"alt,omitempty"`
	Caption        string   `yaml:"caption,omitempty"`
	ThumbnailScale *float64 `yaml:"thumbnail_scale,omitempty"`
}

// ThumbnailFileName is <base>_thumb.jpg.
func (i ImageInfo) ThumbnailFileName() string {
	base := filepath.Base(i.FileName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_thumb.jpg"
}

// Scale returns the image's own scale, or fallback.
func (i ImageInfo) Scale(fallback float64) float64 {
	if i.ThumbnailScale != nil {
		return *i.ThumbnailScale
	}
	return fallback
}

// LoadConfig reads a gallery file. The id defaults to the file's base name.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read gallery config: %w", err)
	}
	cfg := Config{ThumbnailScale: DefaultThumbnailScale}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode gallery config %s: %w", path, err)
	}
	if strings.TrimSpace(cfg.ID) == "" {
		base := filepath.Base(path)
		cfg.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for i := range cfg.Images {
		cfg.Images[i].Index = i
	}
	return &cfg, nil
}

// Validate checks the config against the source folder the gallery belongs to.
func (c *Config) Validate(fs afero.Fs, sourceFolder string) error {
	chain := foundation.NewValidatorChain[*Config](
		func(c *Config) foundation.ValidationResult { return foundation.NotBlank("id", c.ID) },
		func(c *Config) foundation.ValidationResult {
			res := foundation.NotBlank("input_image_directory", c.InputImageDirectory)
			if !res.Valid {
				return res
			}
			ok, _ := afero.DirExists(fs, filepath.Join(sourceFolder, c.InputImageDirectory))
			return foundation.Check(ok, "input_image_directory", "missing",
				fmt.Sprintf("directory '%s' does not exist", c.InputImageDirectory))
		},
		func(c *Config) foundation.ValidationResult {
			return foundation.InRange("thumbnail_scale", c.ThumbnailScale, 0, 100)
		},
		func(c *Config) foundation.ValidationResult {
			return foundation.NotBlank("thumbnail_output_folder", c.ThumbnailOutputFolder)
		},
		validateImages,
	)
	return chain.Validate(c).ToError("invalid image gallery " + c.ID)
}

func validateImages(c *Config) foundation.ValidationResult {
	res := foundation.Valid()
	for i, img := range c.Images {
		field := fmt.Sprintf("images[%d]", i)
		res = res.Combine(foundation.NotBlank(field+".file_name", img.FileName))
		if img.ThumbnailScale != nil {
			res = res.Combine(foundation.InRange(field+".thumbnail_scale", *img.ThumbnailScale, 0, 100))
		}
	}
	return res
}
