package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
)

func writeConfig(t *testing.T, fs afero.Fs, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, "/site/_config.yml", []byte(content), 0o644))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/site", 0o755))

	cfg, err := Load(fs, "/site")
	require.NoError(t, err)
	assert.Equal(t, "/site", cfg.Source)
	assert.Equal(t, "/site/_site", cfg.Destination)
	assert.Equal(t, DefaultPermalink, cfg.Permalink)
	assert.Equal(t, string(EngineLiquid), cfg.Engine)
	assert.Equal(t, DefaultPagesLayout, cfg.CategoryPagesLayout)
	assert.Equal(t, DefaultThumbnailWorkDir, cfg.ThumbnailWorkDir)
	assert.Equal(t, runtime.NumCPU(), cfg.GalleryWorkers)
	assert.Equal(t, DefaultWatchDebounce, cfg.WatchDebounce)
	assert.True(t, cfg.ExternalLinksNewTab())
	assert.False(t, cfg.ActivityPub.Enabled())
}

func TestLoad_TypedAndRawViews(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, `title: Baked
url: https://blog.example.org/
engine: GoTemplate
destination: public
skip_file_on_error: true
tag_pages_layout: tags
gallery_workers: 3
watch_debounce: 1s
markdown:
  extensions: [table, footnote]
  external_links_new_tab: false
twitter: someone
`)

	cfg, err := Load(fs, "/site")
	require.NoError(t, err)
	assert.Equal(t, "Baked", cfg.Title)
	assert.Equal(t, string(EngineGoTemplate), cfg.Engine)
	assert.Equal(t, "/site/public", cfg.Destination)
	assert.True(t, cfg.SkipFileOnError)
	assert.Equal(t, "tags", cfg.TagPagesLayout)
	assert.Equal(t, DefaultPagesLayout, cfg.CategoryPagesLayout)
	assert.Equal(t, 3, cfg.GalleryWorkers)
	assert.Equal(t, time.Second, cfg.WatchDebounce)
	assert.False(t, cfg.ExternalLinksNewTab())
	assert.Equal(t, "blog.example.org", cfg.URLNoHTTP)

	assert.Equal(t, "someone", cfg.Site.GetString("twitter"))
	assert.Equal(t, "blog.example.org", cfg.Site.GetString("urlnohttp"))
	assert.Equal(t, []string{"title", "url", "engine"}, cfg.Site.Keys()[:3])

	opts := cfg.MarkdownOptions()
	assert.Equal(t, []string{"table", "footnote"}, opts.Extensions)
	assert.False(t, opts.ExternalLinksNewTab)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("KILN_TEST_TITLE", "From Env")
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "title: ${KILN_TEST_TITLE}\n")

	cfg, err := Load(fs, "/site")
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Title)
	assert.Equal(t, "From Env", cfg.Site.GetString("title"))
}

func TestLoad_InvalidYAMLIsConfigError(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "title: [unclosed\n")

	_, err := Load(fs, "/site")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "unknown engine", yaml: "engine: razor\n", wantErr: "engine: must be one of"},
		{name: "relative url", yaml: "url: example.org\n", wantErr: "url: must be an absolute URL"},
		{name: "unknown markdown extension", yaml: "markdown:\n  extensions: [mermaid]\n", wantErr: "unknown extension mermaid"},
		{name: "activitypub needs username and url", yaml: "actpub_directory: ap\n", wantErr: "actpub_username: can not be null or empty; url: can not be null or empty"},
		{name: "activitypub created timestamp", yaml: "url: https://x.org\nactpub_directory: ap\nactpub_username: me\nactpub_created: yesterday\n", wantErr: "actpub_created"},
		{name: "valid activitypub", yaml: "url: https://x.org\nactpub_directory: ap\nactpub_username: me\nactpub_created: 2022-01-02T03:04:05Z\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			err = Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestURLCombine(t *testing.T) {
	cfg := &Config{URL: "https://x.org/"}
	assert.Equal(t, "https://x.org/ap/profile.json", cfg.URLCombine("/ap/profile.json"))
	assert.Equal(t, "https://x.org/a", cfg.URLCombine("a"))
}

func TestNormalizeEngineAndLogLevel(t *testing.T) {
	assert.Equal(t, EngineLiquid, NormalizeEngine("pongo2"))
	assert.Equal(t, EngineGoTemplate, NormalizeEngine(" html/template "))
	assert.Equal(t, EngineLiquid, NormalizeEngine("unknown"))

	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("WARNING"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KILN_ENV_A=from-env\nKILN_ENV_B=from-env\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("KILN_ENV_A=from-local\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("KILN_ENV_A")
		_ = os.Unsetenv("KILN_ENV_B")
	})

	loaded, err := LoadEnv(dir)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.Equal(t, "from-local", os.Getenv("KILN_ENV_A"))
	assert.Equal(t, "from-env", os.Getenv("KILN_ENV_B"))
}

func TestInit_WritesStarterSite(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, Init(fs, "/new", false))

	cfg, err := Load(fs, "/new")
	require.NoError(t, err)
	assert.Equal(t, "My Kiln Site", cfg.Title)

	for _, p := range []string{"/new/_layouts/layout.html", "/new/_layouts/post.html", "/new/index.html"} {
		ok, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.True(t, ok, p)
	}
	posts, err := afero.ReadDir(fs, "/new/_posts")
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	err = Init(fs, "/new", false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	require.NoError(t, Init(fs, "/new", true))
}
