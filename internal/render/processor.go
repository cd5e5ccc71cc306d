package render

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/frontmatter"
	"git.home.luguber.info/inful/kiln/internal/logfields"
	"git.home.luguber.info/inful/kiln/internal/markup"
	"git.home.luguber.info/inful/kiln/internal/metrics"
	"git.home.luguber.info/inful/kiln/internal/site"
	"git.home.luguber.info/inful/kiln/internal/templating"
)

// maxLayoutDepth bounds layout chains so a self-referencing layout cannot spin forever.
const maxLayoutDepth = 32

// Processor renders every post and page of a site to the output folder.
type Processor struct {
	fs               afero.Fs
	engine           templating.Engine
	markup           markup.Engine
	transformers     []Transformer
	policy           ErrorPolicy
	strictLayouts    bool
	excerptSeparator string
	logger           *slog.Logger
	recorder         metrics.Recorder
}

// Option configures a Processor.
type Option func(*Processor)

// WithPolicy sets the failure policy (default PolicyAbort).
func WithPolicy(p ErrorPolicy) Option { return func(pr *Processor) { pr.policy = p } }

// WithStrictLayouts turns a missing layout file into an error.
func WithStrictLayouts(strict bool) Option { return func(pr *Processor) { pr.strictLayouts = strict } }

// WithExcerptSeparator sets the site-wide excerpt separator.
func WithExcerptSeparator(sep string) Option {
	return func(pr *Processor) {
		if sep != "" {
			pr.excerptSeparator = sep
		}
	}
}

// WithTransformers appends content transformers.
func WithTransformers(ts ...Transformer) Option {
	return func(pr *Processor) { pr.transformers = append(pr.transformers, ts...) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(pr *Processor) {
		if l != nil {
			pr.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(pr *Processor) { pr.recorder = metrics.OrNoop(r) }
}

// NewProcessor builds a processor writing through fs.
func NewProcessor(fs afero.Fs, engine templating.Engine, md markup.Engine, opts ...Option) *Processor {
	p := &Processor{
		fs:               fs,
		engine:           engine,
		markup:           md,
		excerptSeparator: DefaultExcerptSeparator,
		logger:           slog.Default(),
		recorder:         metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process renders every post, then every page, in collection order. Previous
// is the item after the current one and Next the item before it, matching the
// newest-first order of the collections.
func (p *Processor) Process(ctx context.Context, s *site.Context) (*Report, error) {
	report := &Report{}
	layouts := NewLayoutResolver(p.fs, s.SourceFolder, p.engine.LayoutExtensions())

	p.logger.Debug("Processing posts", logfields.Count(len(s.Posts)), logfields.Engine(p.engine.Name()))
	if err := p.processList(ctx, s, s.Posts, true, layouts, report); err != nil {
		return report, err
	}
	pages := s.Pages()
	p.logger.Debug("Processing pages", logfields.Count(len(pages)))
	if err := p.processList(ctx, s, pages, false, layouts, report); err != nil {
		return report, err
	}
	return report, nil
}

func (p *Processor) processList(ctx context.Context, s *site.Context, list []*site.Page, posts bool, layouts *LayoutResolver, report *Report) error {
	for i, page := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		var previous, next *site.Page
		if i < len(list)-1 {
			previous = list[i+1]
		}
		if i >= 1 {
			next = list[i-1]
		}
		relative := ""
		if posts {
			relative = page.Filepath
		}
		start := time.Now()
		if err := p.processPage(s, page, previous, next, relative, layouts, report); err != nil {
			return err
		}
		p.recorder.ObservePageRender(time.Since(start))
		report.Processed++
	}
	return nil
}

func (p *Processor) processPage(s *site.Context, page *site.Page, previous, next *site.Page, relative string, layouts *LayoutResolver, report *Report) error {
	if relative == "" {
		relative = outputRelative(s.SourceFolder, page.File)
	}
	if page.OutputFile == "" {
		page.OutputFile = filepath.Join(s.OutputFolder, relative)
	}

	if IsImage(page.File) || page.Kind == site.NonProcessed {
		return p.copyPage(page, report)
	}
	if page.Kind == site.Raw {
		return p.writeFile(page.OutputFile, page.Content, metrics.PageRaw, report)
	}

	ext := filepath.Ext(page.File)
	if markup.IsMarkdown(page.File) || p.isTemplateSource(ext) {
		if strings.EqualFold(filepath.Ext(page.OutputFile), ext) {
			page.OutputFile = strings.TrimSuffix(page.OutputFile, filepath.Ext(page.OutputFile)) + ".html"
		}
	}

	base := newPageContext(s, page, frontmatter.ExcludeHeader(page.Content), previous, next)
	contexts, err := p.expand(s, page, base)
	if err != nil {
		return p.fail(base.OutputPath, "", ErrContentRender, err, report)
	}

	for _, c := range contexts {
		if err := p.renderContext(c, layouts, report); err != nil {
			return err
		}
	}
	return nil
}

// expand returns one context per output file of page.
func (p *Processor) expand(s *site.Context, page *site.Page, base *PageContext) ([]*PageContext, error) {
	raw, ok := page.Bag.Get("paginate")
	if !ok {
		return []*PageContext{base}, nil
	}
	size, err := paginateSize(raw)
	if err != nil {
		return nil, err
	}
	slots, err := Paginate(size, len(s.Posts), page.Bag.GetString("paginate_link"), page.URL, page.OutputFile, s.OutputFolder)
	if err != nil {
		return nil, err
	}
	contexts := make([]*PageContext, 0, len(slots))
	for i, slot := range slots {
		slot.Paginator.Posts = PostsForPage(s.Posts, size, slot.Paginator.PageNumber)
		if i == 0 {
			base.Paginator = slot.Paginator
			contexts = append(contexts, base)
			continue
		}
		contexts = append(contexts, base.fork(slot))
	}
	return contexts, nil
}

func (p *Processor) renderContext(c *PageContext, layouts *LayoutResolver, report *Report) error {
	page := c.Page

	body, err := p.engine.Render(c.Content, c.data(c.Content, nil))
	if err != nil {
		return p.fail(c.OutputPath, "", ErrContentRender, err, report)
	}
	c.Content = p.renderContent(page.File, body)
	c.FullContent = c.Content

	separator := p.excerptSeparator
	if c.Bag.Has("excerpt_separator") {
		separator = c.Bag.GetString("excerpt_separator")
	}
	if excerpt, ok := Excerpt(c.Content, separator); ok {
		c.Bag.Set("excerpt", site.String(excerpt))
		page.Bag.SetIfAbsent("excerpt", site.String(excerpt))
	}

	metadata := page.Bag
	for depth := 0; ; depth++ {
		raw, ok := metadata.Get("layout")
		if !ok || raw.IsNull() {
			break
		}
		name := raw.String()
		if name == "" || name == "nil" {
			break
		}
		if depth >= maxLayoutDepth {
			return p.fail(c.OutputPath, name, ErrLayoutRender, fmt.Errorf("layout chain deeper than %d", maxLayoutDepth), report)
		}

		path, found := p.layoutPath(c.Site, metadata, name, layouts)
		if !found {
			if p.strictLayouts {
				return ferrors.ConfigError(fmt.Sprintf("layout %q not found", name)).
					WithCause(ErrLayoutNotFound).
					WithContext("output_path", c.OutputPath).
					WithContext("layout", name).
					Build()
			}
			p.logger.Debug("Layout not found, stopping layout chain",
				logfields.Layout(name), logfields.OutputPath(c.OutputPath))
			break
		}

		next, err := p.applyLayout(c, path, layouts)
		if err != nil {
			return p.fail(c.OutputPath, name, ErrLayoutRender, err, report)
		}
		metadata = next
	}

	return p.writeFile(c.OutputPath, c.FullContent, metrics.PageWritten, report)
}

func (p *Processor) layoutPath(s *site.Context, metadata *site.Bag, name string, layouts *LayoutResolver) (string, bool) {
	if metadata.GetBool("layout_is_path", false) {
		path := filepath.FromSlash(name)
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.SourceFolder, path)
		}
		return path, true
	}
	return layouts.Resolve(name)
}

// applyLayout renders c's full content into the layout at path and returns
// the layout's own front matter.
func (p *Processor) applyLayout(c *PageContext, path string, layouts *LayoutResolver) (*site.Bag, error) {
	layout, err := layouts.Load(path)
	if err != nil {
		return nil, err
	}
	out, err := p.engine.Render(layout.Template, c.data(c.FullContent, layout.Meta))
	if err != nil {
		return nil, err
	}
	c.FullContent = out
	return layout.Meta, nil
}

// renderContent converts markdown and folds the transformers. Failures become
// a visible inline error block instead of aborting the run.
func (p *Processor) renderContent(file, contents string) string {
	out, err := p.convert(file, contents)
	if err != nil {
		p.logger.Info("Error converting content", logfields.File(file), logfields.Error(err))
		return fmt.Sprintf("<p><b>Error converting markdown:</b><br />%s</p><p>Original content:<br /><pre>%s</pre></p>",
			html.EscapeString(err.Error()), html.EscapeString(contents))
	}
	return out
}

func (p *Processor) convert(file, contents string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("converter panic: %v", r)
		}
	}()
	out = contents
	if markup.IsMarkdown(file) && p.markup != nil {
		out, err = p.markup.Convert(out)
		if err != nil {
			return "", err
		}
		out = strings.TrimSpace(out)
	}
	for _, t := range p.transformers {
		out, err = t.Transform(out)
		if err != nil {
			return "", err
		}
	}
	return out, nil
}

func (p *Processor) fail(outputPath, layout string, stage, cause error, report *Report) error {
	if p.policy == PolicyAbort {
		return pageError(stage, outputPath, layout, cause)
	}
	attrs := []any{logfields.OutputPath(outputPath), logfields.Error(cause)}
	if layout != "" {
		attrs = append(attrs, logfields.Layout(layout))
	}
	p.logger.Warn("Skipping file", attrs...)
	report.skip(outputPath, layout, cause)
	p.recorder.IncPageResult(metrics.PageSkipped)
	return nil
}

func (p *Processor) copyPage(page *site.Page, report *Report) error {
	if err := ensureDir(p.fs, page.OutputFile); err != nil {
		return ioError("create output directory", page.OutputFile, err)
	}
	copied, err := copyIfNewer(p.fs, page.File, page.OutputFile)
	if err != nil {
		return ioError("copy file", page.File, err)
	}
	if copied {
		report.Copied = append(report.Copied, page.OutputFile)
		p.recorder.IncPageResult(metrics.PageCopied)
	} else {
		report.Unchanged = append(report.Unchanged, page.OutputFile)
		p.recorder.IncPageResult(metrics.PageFresh)
	}
	return nil
}

func (p *Processor) writeFile(path, content string, result metrics.PageResult, report *Report) error {
	if err := ensureDir(p.fs, path); err != nil {
		return ioError("create output directory", path, err)
	}
	if err := afero.WriteFile(p.fs, path, []byte(content), 0o644); err != nil {
		return ioError("write file", path, err)
	}
	report.Written = append(report.Written, path)
	p.recorder.IncPageResult(result)
	return nil
}

func (p *Processor) isTemplateSource(ext string) bool {
	if strings.EqualFold(ext, ".html") || strings.EqualFold(ext, ".htm") {
		return false
	}
	for _, le := range p.engine.LayoutExtensions() {
		if strings.EqualFold(le, ext) {
			return true
		}
	}
	return false
}

func outputRelative(sourceFolder, file string) string {
	if rel, err := filepath.Rel(sourceFolder, file); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return strings.TrimLeft(strings.TrimPrefix(file, sourceFolder), `/\`)
}
