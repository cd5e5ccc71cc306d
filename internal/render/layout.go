package render

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/kiln/internal/frontmatter"
	"git.home.luguber.info/inful/kiln/internal/site"
)

// LayoutsDir is the conventional layout folder under the source root.
const LayoutsDir = "_layouts"

// Layout is a parsed layout file.
type Layout struct {
	Path     string
	Meta     *site.Bag
	Template string
}

// LayoutResolver finds layout files by logical name. Lookups and parsed
// layouts are memoized; the source tree must not change during a run.
type LayoutResolver struct {
	fs   afero.Fs
	dir  string
	exts []string

	mu     sync.Mutex
	paths  map[string]string
	parsed map[string]*Layout
}

// NewLayoutResolver probes <sourceFolder>/_layouts/<name><ext> for each ext in order.
func NewLayoutResolver(fs afero.Fs, sourceFolder string, exts []string) *LayoutResolver {
	return &LayoutResolver{
		fs:     fs,
		dir:    filepath.Join(sourceFolder, LayoutsDir),
		exts:   exts,
		paths:  map[string]string{},
		parsed: map[string]*Layout{},
	}
}

// Resolve returns the first existing layout file for name.
func (r *LayoutResolver) Resolve(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if path, ok := r.paths[name]; ok {
		return path, path != ""
	}
	path := ""
	for _, ext := range r.exts {
		candidate := filepath.Join(r.dir, name+ext)
		if ok, err := afero.Exists(r.fs, candidate); err == nil && ok {
			path = candidate
			break
		}
	}
	r.paths[name] = path
	return path, path != ""
}

// Load reads and parses the layout file at path.
func (r *LayoutResolver) Load(path string) (*Layout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.parsed[path]; ok {
		return l, nil
	}
	b, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	text := string(b)
	l := &Layout{
		Path:     path,
		Meta:     frontmatter.Header(text),
		Template: frontmatter.ExcludeHeader(text),
	}
	r.parsed[path] = l
	return l, nil
}
