package templating

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const goTemplateExt = ".gohtml"

// GoTemplate renders html/template layouts. Content variables are passed as
// trusted HTML; everything else is escaped by html/template.
type GoTemplate struct {
	includes map[string]string
	funcs    template.FuncMap

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewGoTemplate loads every *.gohtml partial under includesDir. A missing
// directory means no partials.
func NewGoTemplate(fs afero.Fs, includesDir string) (*GoTemplate, error) {
	g := &GoTemplate{
		includes: map[string]string{},
		cache:    map[string]*template.Template{},
		funcs: template.FuncMap{
			"safe": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec // content is authored HTML
			"lower": strings.ToLower,
			"upper": strings.ToUpper,
		},
	}
	if includesDir == "" {
		return g, nil
	}
	if ok, err := afero.DirExists(fs, includesDir); err != nil || !ok {
		return g, nil
	}
	err := afero.Walk(fs, includesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), goTemplateExt) {
			return nil
		}
		b, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(includesDir, path)
		if err != nil {
			return err
		}
		g.includes[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load includes: %w", err)
	}
	return g, nil
}

func (g *GoTemplate) Name() string { return EngineGoTemplate }

func (g *GoTemplate) LayoutExtensions() []string { return []string{goTemplateExt} }

// Render parses tpl with the loaded partials (memoized by text) and executes it.
func (g *GoTemplate) Render(tpl string, data Data) (string, error) {
	t, err := g.parse(tpl)
	if err != nil {
		return "", err
	}
	vars := data.Vars()
	vars["content"] = template.HTML(data.Content)          //nolint:gosec // rendered page HTML
	vars["full_content"] = template.HTML(data.FullContent) //nolint:gosec // rendered page HTML

	var sb strings.Builder
	if err := t.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return sb.String(), nil
}

func (g *GoTemplate) parse(tpl string) (*template.Template, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.cache[tpl]; ok {
		return t, nil
	}
	root := template.New("page").Funcs(g.funcs)
	names := make([]string, 0, len(g.includes))
	for name := range g.includes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := root.New(name).Parse(g.includes[name]); err != nil {
			return nil, fmt.Errorf("parse include %s: %w", name, err)
		}
	}
	if _, err := root.Parse(tpl); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	g.cache[tpl] = root
	return root, nil
}
