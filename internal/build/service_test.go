package build

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/kiln/internal/config"
	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/metrics"
	"git.home.luguber.info/inful/kiln/internal/site"
)

// recordingRecorder captures outcomes and stage results.
type recordingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	outcomes []metrics.BuildOutcomeLabel
	stages   map[string]metrics.ResultLabel
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{stages: map[string]metrics.ResultLabel{}}
}

func (r *recordingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recordingRecorder) IncStageResult(stage string, res metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[stage] = res
}

var baseFiles = map[string]string{
	"_config.yml":                "title: Test\nurl: https://example.org\n",
	"_layouts/layout.html":       "<html>{{ content }}</html>",
	"_layouts/post.html":         "---\nlayout: layout\n---\n<article>{{ page.title }}{{ content }}</article>",
	"_posts/2024-01-02-hello.md": "---\nlayout: post\ntitle: Hello\ncategories: [news]\ntags: [go]\n---\nHi\n",
	"index.html":                 "---\nlayout: layout\n---\nhome",
	"style.css":                  "body{}",
}

func newSite(t *testing.T, files map[string]string, overrides map[string]string) (afero.Fs, *config.Config) {
	t.Helper()
	fs := afero.NewMemMapFs()
	write := func(name, content string) {
		p := filepath.Join("/site", filepath.FromSlash(name))
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fs, p, []byte(content), 0o644))
	}
	for name, content := range files {
		if _, ok := overrides[name]; ok {
			continue
		}
		write(name, content)
	}
	for name, content := range overrides {
		write(name, content)
	}
	cfg, err := config.Load(fs, "/site")
	require.NoError(t, err)
	return fs, cfg
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	b, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(b)
}

func TestBuildStatus_IsSuccess(t *testing.T) {
	tests := []struct {
		status   BuildStatus
		expected bool
	}{
		{BuildStatusSuccess, true},
		{BuildStatusWarning, true},
		{BuildStatusFailed, false},
		{BuildStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsSuccess())
			assert.True(t, tt.status.IsTerminal())
		})
	}
	assert.False(t, BuildStatus("running").IsTerminal())
}

func TestRun_BakesSite(t *testing.T) {
	fs, cfg := newSite(t, baseFiles, nil)
	rec := newRecordingRecorder()

	svc := NewBuildService(fs).WithRecorder(rec).WithRunIDFunc(func() string { return "run-1" })
	result, err := svc.Run(context.Background(), BuildRequest{Config: cfg})
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, BuildStatusSuccess, result.Status)
	assert.Equal(t, "/site/_site", result.OutputPath)
	assert.Equal(t, 1, result.Posts)
	require.NotNil(t, result.Report)
	assert.False(t, result.Report.HasSkips())
	for _, name := range []StageName{StagePrepare, StageDiscover, StageGenerate, StageRender, StagePublish} {
		assert.Contains(t, result.StageDurations, name)
		assert.Equal(t, metrics.ResultSuccess, rec.stages[string(name)], name)
	}
	assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeSuccess}, rec.outcomes)

	post := readFile(t, fs, "/site/_site/2024/01/02/hello.html")
	assert.Contains(t, post, "<html><article>Hello")
	assert.Contains(t, post, "<p>Hi</p>")
	assert.Contains(t, readFile(t, fs, "/site/_site/index.html"), "<html>home")
	assert.Equal(t, "body{}", readFile(t, fs, "/site/_site/style.css"))

	for _, p := range []string{"/site/_site/category/news/index.html", "/site/_site/tag/go/index.html"} {
		ok, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.True(t, ok, p)
	}
}

func TestRun_SkipFileOnError(t *testing.T) {
	overrides := map[string]string{
		"_layouts/broken.html": "{% if %}",
		"broken.html":          "---\nlayout: broken\n---\n<p>b</p>",
	}

	t.Run("skip", func(t *testing.T) {
		fs, cfg := newSite(t, baseFiles, overrides)
		rec := newRecordingRecorder()
		result, err := NewBuildService(fs).WithRecorder(rec).
			Run(context.Background(), BuildRequest{Config: cfg, SkipFileOnError: true})
		require.NoError(t, err)
		assert.Equal(t, BuildStatusWarning, result.Status)
		require.Len(t, result.Report.Skipped, 1)
		assert.Equal(t, metrics.ResultWarning, rec.stages[string(StageRender)])
		assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeWarning}, rec.outcomes)

		ok, _ := afero.Exists(fs, "/site/_site/index.html")
		assert.True(t, ok)
	})

	t.Run("abort", func(t *testing.T) {
		fs, cfg := newSite(t, baseFiles, overrides)
		rec := newRecordingRecorder()
		result, err := NewBuildService(fs).WithRecorder(rec).Run(context.Background(), BuildRequest{Config: cfg})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRender)
		assert.Equal(t, BuildStatusFailed, result.Status)
		assert.Equal(t, metrics.ResultFatal, rec.stages[string(StageRender)])
		assert.NotContains(t, result.StageDurations, StagePublish)
	})
}

func TestRun_NilConfig(t *testing.T) {
	result, err := NewBuildService(afero.NewMemMapFs()).Run(context.Background(), BuildRequest{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Equal(t, BuildStatusFailed, result.Status)
}

func TestRun_UnknownEngine(t *testing.T) {
	fs, cfg := newSite(t, baseFiles, nil)
	cfg.Engine = "razor"

	result, err := NewBuildService(fs).Run(context.Background(), BuildRequest{Config: cfg})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrepare)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Equal(t, BuildStatusFailed, result.Status)
}

func TestRun_Cancelled(t *testing.T) {
	fs, cfg := newSite(t, baseFiles, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := newRecordingRecorder()
	result, err := NewBuildService(fs).WithRecorder(rec).Run(ctx, BuildRequest{Config: cfg})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, BuildStatusCancelled, result.Status)
	assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeCanceled}, rec.outcomes)
}

func TestRun_ExtraTransforms(t *testing.T) {
	fs, cfg := newSite(t, baseFiles, nil)

	var sawOutput bool
	before := TransformFunc{Label: "extra-page", Fn: func(_ context.Context, s *site.Context) error {
		p := site.NewPage(filepath.Join(s.SourceFolder, "extra.html"))
		p.ID = "extra.html"
		p.Kind = site.Processed
		p.Content = "extra"
		p.Filepath = "extra.html"
		p.OutputFile = filepath.Join(s.OutputFolder, "extra.html")
		p.URL = "/extra.html"
		s.AddPage(p)
		return nil
	}}
	after := TransformFunc{Label: "check", Fn: func(_ context.Context, s *site.Context) error {
		sawOutput, _ = afero.Exists(fs, filepath.Join(s.OutputFolder, "extra.html"))
		return nil
	}}

	_, err := NewBuildService(fs).Run(context.Background(), BuildRequest{
		Config: cfg,
		Before: []Transform{before},
		After:  []Transform{after},
	})
	require.NoError(t, err)
	assert.True(t, sawOutput)
	assert.Equal(t, "extra", readFile(t, fs, "/site/_site/extra.html"))
}

func TestRun_TransformErrorNamesTransform(t *testing.T) {
	fs, cfg := newSite(t, baseFiles, nil)
	boom := errors.New("boom")
	failing := TransformFunc{Label: "failing", Fn: func(context.Context, *site.Context) error { return boom }}

	result, err := NewBuildService(fs).Run(context.Background(), BuildRequest{Config: cfg, Before: []Transform{failing}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransform)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.Equal(t, BuildStatusFailed, result.Status)
}

func TestRun_WritesActivityPub(t *testing.T) {
	fs, cfg := newSite(t, baseFiles, map[string]string{
		"_config.yml": "title: Test\nurl: https://example.org\nactpub_directory: ap\nactpub_username: me\nactpub_outbox: true\n",
	})

	_, err := NewBuildService(fs).Run(context.Background(), BuildRequest{Config: cfg})
	require.NoError(t, err)
	assert.Contains(t, readFile(t, fs, "/site/_site/ap/webfinger"), `"acct:me@example.org"`)
	assert.Contains(t, readFile(t, fs, "/site/_site/ap/outbox.json"), "https://example.org/2024/01/02/hello.html")
}

func TestBeforeProcessing_Subcategories(t *testing.T) {
	cfg := &config.Config{EnableSubcategories: true}
	names := []string{}
	for _, tr := range BeforeProcessing(afero.NewMemMapFs(), cfg, nil, nil) {
		names = append(names, tr.Name())
	}
	assert.Equal(t, []string{"categories", "tags", "subcategories", "category_tree", "image_gallery"}, names)
}
