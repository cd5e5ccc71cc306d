package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
)

const starterLayout = `<!DOCTYPE html>
<html>
<head><title>{{ page.title }} | {{ site.title }}</title></head>
<body>
{{ content }}
</body>
</html>
`

const starterPostLayout = `---
layout: layout
---
<article>
<h1>{{ page.title }}</h1>
{{ content }}
</article>
`

const starterIndex = `---
layout: layout
title: Home
paginate: 10
---
<ul>
{% for post in paginator.posts %}<li><a href="{{ post.url }}">{{ post.title }}</a></li>
{% endfor %}</ul>
`

const starterPost = `---
layout: post
title: Welcome
categories: [news]
tags: [kiln]
---
Your first post. Everything above the marker below is the excerpt.

<!--more-->

Edit _posts to add more.
`

// Init writes a starter site into dir. Existing files are only replaced when
// force is set.
func Init(fs afero.Fs, dir string, force bool) error {
	cfgPath := filepath.Join(dir, FileName)
	if exists, _ := afero.Exists(fs, cfgPath); exists && !force {
		return ferrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", cfgPath)).
			WithContext("path", cfgPath).Build()
	}

	on := true
	example := Config{
		Title:            "My Kiln Site",
		URL:              "https://example.com",
		Description:      "A site baked with kiln",
		Engine:           string(EngineLiquid),
		Permalink:        DefaultPermalink,
		ExcerptSeparator: "<!--more-->",
		Exclude:          []string{"README.md"},
		Markdown: MarkdownConfig{
			Extensions:          []string{"gfm", "footnote"},
			ExternalLinksNewTab: &on,
		},
		CategoryPagesLayout: DefaultPagesLayout,
		TagPagesLayout:      DefaultPagesLayout,
	}
	data, err := yaml.Marshal(&example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Build()
	}

	layouts := filepath.Join(dir, "_layouts")
	post := filepath.Join(dir, "_posts", time.Now().Format("2006-01-02")+"-welcome.md")
	files := map[string]string{
		cfgPath:                               string(data),
		filepath.Join(layouts, "layout.html"): starterLayout,
		filepath.Join(layouts, "post.html"):   starterPostLayout,
		filepath.Join(dir, "index.html"):      starterIndex,
		post:                                  starterPost,
	}
	for path, content := range files {
		if exists, _ := afero.Exists(fs, path); exists && !force {
			continue
		}
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create directory").
				WithContext("path", path).Build()
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write file").
				WithContext("path", path).Build()
		}
	}
	return nil
}
