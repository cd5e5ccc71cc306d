// Package discovery walks a source tree and builds the site context: posts
// (newest first) from _posts folders, and every other file as a page.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/kiln/internal/config"
	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/frontmatter"
	"git.home.luguber.info/inful/kiln/internal/logfields"
	"git.home.luguber.info/inful/kiln/internal/markup"
	"git.home.luguber.info/inful/kiln/internal/site"
)

// PostsDir is the folder name holding dated posts.
const PostsDir = "_posts"

var postName = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)$`)

// Discoverer builds a site.Context from the files under the source folder.
type Discoverer struct {
	fs     afero.Fs
	cfg    *config.Config
	logger *slog.Logger
	titler cases.Caser
}

// New returns a Discoverer reading through fs.
func New(fs afero.Fs, cfg *config.Config, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{fs: fs, cfg: cfg, logger: logger, titler: cases.Title(language.English)}
}

// Discover walks the source tree. Unpublished items are dropped; files
// without front matter become NonProcessed pages and files matching the raw
// globs become Raw pages.
func (d *Discoverer) Discover(ctx context.Context) (*site.Context, error) {
	src := d.cfg.Source
	s := site.NewContext(src, d.cfg.Destination)
	s.Title = d.cfg.Title
	s.Engine = d.cfg.Engine
	if d.cfg.Site != nil {
		s.Config = d.cfg.Site
	}

	var posts, pages []*site.Page
	err := afero.Walk(d.fs, src, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil || rel == "." {
			return nil
		}
		if info.IsDir() {
			if d.isOutput(p) || d.ignored(rel, info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.ignored(rel, info.Name()) {
			return nil
		}

		page, isPost, err := d.load(p, rel, info)
		if err != nil {
			return err
		}
		if page == nil {
			return nil
		}
		if isPost {
			posts = append(posts, page)
		} else {
			pages = append(pages, page)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if _, ok := ferrors.AsClassified(err); ok {
			return nil, err
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryDiscovery, "failed to walk source folder").
			WithContext("path", src).Build()
	}

	sortNewestFirst(posts)
	s.Posts = posts
	s.SetPages(pages)
	d.logger.Info("Discovered site content",
		slog.Int("posts", len(posts)), slog.Int("pages", len(pages)), logfields.Path(src))
	return s, nil
}

func (d *Discoverer) isOutput(p string) bool {
	out := filepath.Clean(d.cfg.Destination)
	return filepath.Clean(p) == out
}

// ignored applies the underscore/dot convention and the include and exclude
// globs. _posts folders are always walked.
func (d *Discoverer) ignored(rel, name string) bool {
	slashed := filepath.ToSlash(rel)
	if matchAny(d.cfg.Include, slashed, name) {
		return false
	}
	if matchAny(d.cfg.Exclude, slashed, name) {
		return true
	}
	if name == PostsDir {
		return false
	}
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

func matchAny(globs []string, rel, name string) bool {
	for _, g := range globs {
		g = strings.TrimSuffix(filepath.ToSlash(g), "/")
		if g == rel || g == name {
			return true
		}
		if ok, _ := path.Match(g, rel); ok {
			return true
		}
		if ok, _ := path.Match(g, name); ok {
			return true
		}
	}
	return false
}

func (d *Discoverer) load(p, rel string, info fs.FileInfo) (*site.Page, bool, error) {
	data, err := afero.ReadFile(d.fs, p)
	if err != nil {
		return nil, false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read source file").
			WithContext("path", p).Build()
	}

	page := site.NewPage(p)
	page.ID = filepath.ToSlash(rel)
	page.Date = info.ModTime()

	if matchAny(d.cfg.Raw, filepath.ToSlash(rel), info.Name()) {
		page.Kind = site.Raw
		page.Content = string(data)
		page.Filepath = rel
		page.URL = site.URLFromPath(rel)
		return page, false, nil
	}

	dir, isPost := postsParent(rel)
	isPost = isPost && (markup.IsMarkdown(p) || d.isTemplate(p))

	if !frontmatter.HasHeader(data) && !isPost {
		page.Kind = site.NonProcessed
		page.Filepath = rel
		page.URL = site.URLFromPath(rel)
		return page, false, nil
	}

	bag, _, _, err := frontmatter.Parse(data)
	if err != nil {
		return nil, false, ferrors.WrapError(err, ferrors.CategoryDiscovery, "invalid front matter").
			WithContext("path", p).Build()
	}
	page.Bag = bag
	page.Content = string(data)
	if !bag.GetBool("published", true) {
		d.logger.Debug("Skipping unpublished item", logfields.File(p))
		return nil, false, nil
	}
	page.Categories = stringsFor(bag, "categories", "category")
	page.Tags = stringsFor(bag, "tags", "tag")

	if isPost {
		if err := d.fillPost(page, dir, info.Name()); err != nil {
			return nil, false, err
		}
		return page, true, nil
	}
	d.fillPage(page, rel, info.Name())
	return page, false, nil
}

// fillPost derives date, title, categories and permalink from the file name
// and front matter.
func (d *Discoverer) fillPost(page *site.Page, dir, name string) error {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	m := postName.FindStringSubmatch(base)
	if m == nil {
		return ferrors.DiscoveryError(fmt.Sprintf("post file name must look like YYYY-MM-DD-title: %s", name)).
			WithContext("path", page.File).Build()
	}
	date, err := time.ParseInLocation("2006-01-02", m[1]+"-"+m[2]+"-"+m[3], time.Local)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDiscovery, "invalid post date").
			WithContext("path", page.File).Build()
	}
	page.Date = date
	if v, ok := page.Bag.Get("date"); ok {
		if t, err := v.AsTime(); err == nil {
			page.Date = t
		}
	}
	slugPart := m[4]
	page.Title = page.Bag.GetString("title")
	if page.Title == "" {
		page.Title = d.titleFromName(slugPart)
	}

	if dir != "" {
		page.Categories = append(strings.Split(filepath.ToSlash(dir), "/"), page.Categories...)
	}

	template := d.cfg.Permalink
	if pl := page.Bag.GetString("permalink"); pl != "" {
		template = pl
	}
	page.URL = ExpandPermalink(template, PermalinkInput{Date: page.Date, Title: slugPart, Categories: page.Categories})
	page.Filepath = filepath.FromSlash(FilepathForURL(page.URL))
	return nil
}

func (d *Discoverer) fillPage(page *site.Page, rel, name string) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	page.Title = page.Bag.GetString("title")
	if page.Title == "" {
		page.Title = d.titleFromName(base)
	}
	if v, ok := page.Bag.Get("date"); ok {
		if t, err := v.AsTime(); err == nil {
			page.Date = t
		}
	}

	outRel := rel
	if markup.IsMarkdown(name) || d.isTemplate(name) {
		outRel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	}
	if pl := page.Bag.GetString("permalink"); pl != "" {
		page.URL = ExpandPermalink(pl, PermalinkInput{Date: page.Date, Title: base, Categories: page.Categories})
		page.Filepath = filepath.FromSlash(FilepathForURL(page.URL))
		page.OutputFile = filepath.Join(d.cfg.Destination, page.Filepath)
		return
	}
	page.Filepath = outRel
	page.URL = site.URLFromPath(outRel)
}

// isTemplate reports whether name is a template source rendered to .html.
func (d *Discoverer) isTemplate(name string) bool {
	return d.cfg.Engine == string(config.EngineGoTemplate) && strings.EqualFold(filepath.Ext(name), ".gohtml")
}

func (d *Discoverer) titleFromName(base string) string {
	return d.titler.String(strings.NewReplacer("-", " ", "_", " ").Replace(base))
}

// postsParent reports whether rel lies inside a _posts folder and returns the
// folders between the source root and that _posts folder.
func postsParent(rel string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")
	for i, part := range parts {
		if part == PostsDir {
			return path.Join(parts[:i]...), true
		}
	}
	return "", false
}

// stringsFor reads a list key (or a space separated string) plus a single-value key.
func stringsFor(bag *site.Bag, listKey, singleKey string) []string {
	var out []string
	if v, ok := bag.Get(listKey); ok {
		if items, err := v.AsList(); err == nil {
			for _, item := range items {
				if s, err := item.AsString(); err == nil && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
		} else if s, err := v.AsString(); err == nil {
			out = append(out, strings.Fields(s)...)
		}
	}
	if s := strings.TrimSpace(bag.GetString(singleKey)); s != "" && !contains(out, s) {
		out = append(out, s)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortNewestFirst(posts []*site.Page) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date.Equal(posts[j].Date) {
			return posts[i].File > posts[j].File
		}
		return posts[i].Date.After(posts[j].Date)
	})
}
