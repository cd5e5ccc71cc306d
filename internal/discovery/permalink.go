package discovery

import (
	"fmt"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/kiln/internal/site"
)

// Named permalink styles.
var permalinkStyles = map[string]string{
	"date":    "/:categories/:year/:month/:day/:title.html",
	"pretty":  "/:categories/:year/:month/:day/:title/",
	"ordinal": "/:categories/:year/:y_day/:title.html",
	"none":    "/:categories/:title.html",
}

// PermalinkInput carries the values substituted into a permalink template.
type PermalinkInput struct {
	Date       time.Time
	Title      string // file-name slug
	Categories []string
}

// ExpandPermalink substitutes the tokens of template (or a named style) and
// returns the URL. Empty segments collapse.
func ExpandPermalink(template string, in PermalinkInput) string {
	if style, ok := permalinkStyles[strings.ToLower(strings.TrimSpace(template))]; ok {
		template = style
	}
	cats := make([]string, 0, len(in.Categories))
	for _, c := range in.Categories {
		if s := site.Slugify(c); s != "" {
			cats = append(cats, s)
		}
	}
	first := ""
	if len(cats) > 0 {
		first = cats[0]
	}
	d := in.Date
	r := strings.NewReplacer(
		":categories", strings.Join(cats, "/"),
		":category", first,
		":short_year", d.Format("06"),
		":year", d.Format("2006"),
		":i_month", fmt.Sprint(int(d.Month())),
		":month", d.Format("01"),
		":i_day", fmt.Sprint(d.Day()),
		":day", d.Format("02"),
		":y_day", fmt.Sprintf("%03d", d.YearDay()),
		":title", in.Title,
		":slug", site.Slugify(in.Title),
	)
	out := r.Replace(template)
	trailing := strings.HasSuffix(out, "/")
	out = path.Clean("/" + out)
	if trailing && out != "/" {
		out += "/"
	}
	return out
}

// FilepathForURL maps a URL onto an output-relative file path.
func FilepathForURL(url string) string {
	p := strings.TrimLeft(url, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	return p
}
