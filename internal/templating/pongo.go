package templating

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/spf13/afero"
)

// Pongo is the liquid-flavoured engine backed by pongo2. Output is not
// auto-escaped; page content is already HTML.
type Pongo struct {
	set *pongo2.TemplateSet

	mu    sync.Mutex
	cache map[string]*pongo2.Template
}

// NewPongo returns an engine whose includes resolve against includesDir on fs.
func NewPongo(fs afero.Fs, includesDir string) *Pongo {
	loader := &aferoLoader{fs: fs, dir: includesDir}
	return &Pongo{
		set:   pongo2.NewSet("kiln", loader),
		cache: map[string]*pongo2.Template{},
	}
}

func (p *Pongo) Name() string { return EngineLiquid }

func (p *Pongo) LayoutExtensions() []string { return []string{".html", ".htm"} }

// Render compiles tpl (memoized by text) and executes it.
func (p *Pongo) Render(tpl string, data Data) (string, error) {
	compiled, err := p.compile(tpl)
	if err != nil {
		return "", err
	}
	out, err := compiled.Execute(pongo2.Context(data.Vars()))
	if err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return out, nil
}

func (p *Pongo) compile(tpl string) (*pongo2.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.cache[tpl]; ok {
		return t, nil
	}
	t, err := p.set.FromString("{% autoescape off %}" + tpl + "{% endautoescape %}")
	if err != nil {
		return nil, fmt.Errorf("compile template: %w", err)
	}
	p.cache[tpl] = t
	return t, nil
}

// aferoLoader resolves pongo2 includes on an afero file system.
type aferoLoader struct {
	fs  afero.Fs
	dir string
}

func (l *aferoLoader) Abs(_, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.dir, name)
}

func (l *aferoLoader) Get(path string) (io.Reader, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, path)
	}
	return l.fs.Open(path)
}
