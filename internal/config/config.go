// Package config loads the site configuration from _config.yml.
//
// The file is decoded twice: once into the typed Config the build reads, and
// once into an ordered site.Bag that templates see as the "site" variable, so
// arbitrary user keys survive untouched.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/site"
)

// FileName is the configuration file looked up in the source folder.
const FileName = "_config.yml"

const (
	DefaultPermalink        = "/:year/:month/:day/:title.html"
	DefaultDestination      = "_site"
	DefaultPagesLayout      = "layout"
	DefaultThumbnailWorkDir = "_thumbnails"
	DefaultWatchDebounce    = 300 * time.Millisecond
)

// Config is the typed view of _config.yml.
type Config struct {
	Title            string         `yaml:"title"`
	URL              string         `yaml:"url"`
	URLNoHTTP        string         `yaml:"urlnohttp,omitempty"`
	Description      string         `yaml:"description,omitempty"`
	Author           string         `yaml:"author,omitempty"`
	Engine           string         `yaml:"engine,omitempty"`
	Source           string         `yaml:"source,omitempty"`
	Destination      string         `yaml:"destination,omitempty"`
	Permalink        string         `yaml:"permalink,omitempty"`
	ExcerptSeparator string         `yaml:"excerpt_separator,omitempty"`
	SkipFileOnError  bool           `yaml:"skip_file_on_error,omitempty"`
	StrictLayouts    bool           `yaml:"strict_layouts,omitempty"`
	Include          []string       `yaml:"include,omitempty"`
	Exclude          []string       `yaml:"exclude,omitempty"`
	Raw              []string       `yaml:"raw,omitempty"`
	Markdown         MarkdownConfig `yaml:"markdown,omitempty"`

	CategoryPagesLayout    string `yaml:"category_pages_layout,omitempty"`
	TagPagesLayout         string `yaml:"tag_pages_layout,omitempty"`
	SubcategoryPagesLayout string `yaml:"subcategory_pages_layout,omitempty"`
	EnableSubcategories    bool   `yaml:"enable_subcategories,omitempty"`

	ThumbnailWorkDir string `yaml:"thumbnail_work_dir,omitempty"`
	GalleryWorkers   int    `yaml:"gallery_workers,omitempty"`

	ActivityPub ActivityPubConfig `yaml:",inline"`

	WatchDebounce time.Duration `yaml:"watch_debounce,omitempty"`

	// Site holds every key of the file in document order.
	Site *site.Bag `yaml:"-"`
}

// MarkdownConfig tunes the markdown engine.
type MarkdownConfig struct {
	Extensions          []string `yaml:"extensions,omitempty"`
	ExternalLinksNewTab *bool    `yaml:"external_links_new_tab,omitempty"`
	HardWraps           bool     `yaml:"hard_wraps,omitempty"`
	Safe                bool     `yaml:"safe,omitempty"`
}

// ActivityPubConfig holds the actpub_* keys. Generation is enabled by Directory.
type ActivityPubConfig struct {
	Directory          string   `yaml:"actpub_directory,omitempty"`
	Username           string   `yaml:"actpub_username,omitempty"`
	Summary            string   `yaml:"actpub_summary,omitempty"`
	ProfileURL         string   `yaml:"actpub_profileurl,omitempty"`
	Created            string   `yaml:"actpub_created,omitempty"`
	PublicKeyFile      string   `yaml:"actpub_publickeyfile,omitempty"`
	Icon               string   `yaml:"actpub_icon,omitempty"`
	Inbox              bool     `yaml:"actpub_inbox,omitempty"`
	Outbox             bool     `yaml:"actpub_outbox,omitempty"`
	PostsPerOutboxPage int      `yaml:"actpub_posts_per_outbox_page,omitempty"`
	Following          []string `yaml:"actpub_following,omitempty"`
	GitHub             string   `yaml:"github,omitempty"`
	Contact            string   `yaml:"contact,omitempty"`
}

// Enabled reports whether ActivityPub files should be written.
func (a ActivityPubConfig) Enabled() bool { return strings.TrimSpace(a.Directory) != "" }

// Load reads the configuration for the site rooted at sourceDir. A missing
// _config.yml yields the defaults. Environment references (${VAR}) are
// expanded before decoding.
func Load(fs afero.Fs, sourceDir string) (*Config, error) {
	path := filepath.Join(sourceDir, FileName)
	var data []byte
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to stat config file").
			WithContext("path", path).Build()
	}
	if exists {
		data, err = afero.ReadFile(fs, path)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
				WithContext("path", path).Build()
		}
	}
	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config file").
			WithContext("path", path).Fatal().Build()
	}
	cfg.resolvePaths(sourceDir)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data and applies defaults. Paths are left relative.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	bag := site.NewBag()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		if err := yaml.Unmarshal(data, bag); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	cfg.Site = bag
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if e, err := ParseEngine(c.Engine); err == nil {
		c.Engine = string(e)
	}
	if c.Permalink == "" {
		c.Permalink = DefaultPermalink
	}
	if c.Destination == "" {
		c.Destination = DefaultDestination
	}
	if c.CategoryPagesLayout == "" {
		c.CategoryPagesLayout = DefaultPagesLayout
	}
	if c.TagPagesLayout == "" {
		c.TagPagesLayout = DefaultPagesLayout
	}
	if c.SubcategoryPagesLayout == "" {
		c.SubcategoryPagesLayout = DefaultPagesLayout
	}
	if c.ThumbnailWorkDir == "" {
		c.ThumbnailWorkDir = DefaultThumbnailWorkDir
	}
	if c.GalleryWorkers <= 0 {
		c.GalleryWorkers = runtime.NumCPU()
	}
	if c.WatchDebounce <= 0 {
		c.WatchDebounce = DefaultWatchDebounce
	}
	if c.Markdown.ExternalLinksNewTab == nil {
		on := true
		c.Markdown.ExternalLinksNewTab = &on
	}
	if c.URLNoHTTP == "" && c.URL != "" {
		c.URLNoHTTP = stripScheme(c.URL)
	}
	c.Site.SetIfAbsent("urlnohttp", site.String(c.URLNoHTTP))
}

// resolvePaths anchors Source and Destination at sourceDir.
func (c *Config) resolvePaths(sourceDir string) {
	if c.Source == "" {
		c.Source = sourceDir
	} else if !filepath.IsAbs(c.Source) {
		c.Source = filepath.Join(sourceDir, c.Source)
	}
	if !filepath.IsAbs(c.Destination) {
		c.Destination = filepath.Join(c.Source, c.Destination)
	}
	c.Source = filepath.Clean(c.Source)
	c.Destination = filepath.Clean(c.Destination)
}

// ExternalLinksNewTab reports the effective markdown link setting.
func (c *Config) ExternalLinksNewTab() bool {
	return c.Markdown.ExternalLinksNewTab == nil || *c.Markdown.ExternalLinksNewTab
}

// URLCombine joins the site URL and a site-relative location with one slash.
func (c *Config) URLCombine(location string) string {
	return strings.TrimRight(c.URL, "/") + "/" + strings.TrimLeft(location, "/")
}

func stripScheme(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(raw, "/")
	}
	return strings.TrimRight(u.Host+u.Path, "/")
}
