package site

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBag_UnmarshalYAML_PreservesOrderAndTypes(t *testing.T) {
	src := []byte(`layout: post
title: Hello
paginate: 10
ratio: 0.5
draft: false
date: 2024-03-05
tags:
  - go
  - web
author:
  name: Ada
  site: example.org
empty: null
`)
	var b Bag
	require.NoError(t, yaml.Unmarshal(src, &b))

	assert.Equal(t, []string{"layout", "title", "paginate", "ratio", "draft", "date", "tags", "author", "empty"}, b.Keys())

	v, ok := b.Get("paginate")
	require.True(t, ok)
	assert.Equal(t, KindInt, v.Kind())
	n, err := v.AsInt()
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	date, _ := b.Get("date")
	assert.Equal(t, KindTime, date.Kind())
	ts, err := date.AsTime()
	require.NoError(t, err)
	assert.Equal(t, 2024, ts.Year())

	draft, _ := b.Get("draft")
	assert.Equal(t, KindBool, draft.Kind())

	tags, _ := b.Get("tags")
	items, err := tags.AsList()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "web", items[1].String())

	author, _ := b.Get("author")
	nested, err := author.AsMap()
	require.NoError(t, err)
	assert.Equal(t, "Ada", nested.GetString("name"))

	empty, ok := b.Get("empty")
	require.True(t, ok)
	assert.True(t, empty.IsNull())
}

func TestBag_UnmarshalYAML_RejectsSequence(t *testing.T) {
	var b Bag
	require.Error(t, yaml.Unmarshal([]byte("- a\n- b\n"), &b))
}

func TestBag_SetKeepsPosition(t *testing.T) {
	b := NewBag()
	b.Set("a", String("1"))
	b.Set("b", String("2"))
	b.Set("a", String("3"))

	assert.Equal(t, []string{"a", "b"}, b.Keys())
	assert.Equal(t, "3", b.GetString("a"))

	assert.False(t, b.SetIfAbsent("b", String("x")))
	assert.True(t, b.SetIfAbsent("c", String("x")))
	assert.Equal(t, []string{"a", "b", "c"}, b.Keys())

	b.Delete("a")
	assert.Equal(t, []string{"b", "c"}, b.Keys())
}

func TestBag_CloneIsDeep(t *testing.T) {
	inner := NewBag()
	inner.Set("k", String("v"))
	b := NewBag()
	b.Set("nested", Map(inner))

	c := b.Clone()
	inner.Set("k", String("changed"))

	v, _ := c.Get("nested")
	m, err := v.AsMap()
	require.NoError(t, err)
	assert.Equal(t, "v", m.GetString("k"))
	assert.False(t, b.Equal(c))
}

func TestValue_Coercions(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		wantInt int
		intErr  bool
	}{
		{name: "int", value: Int(7), wantInt: 7},
		{name: "integral float", value: Float(3), wantInt: 3},
		{name: "numeric string", value: String(" 12 "), wantInt: 12},
		{name: "fractional float", value: Float(1.5), intErr: true},
		{name: "word", value: String("ten"), intErr: true},
		{name: "null", value: Null(), intErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.value.AsInt()
			if tt.intErr {
				require.ErrorIs(t, err, ErrCoercion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantInt, got)
		})
	}

	b, err := String("TRUE").AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	_, err = List(String("a")).AsString()
	require.ErrorIs(t, err, ErrCoercion)

	ts, err := String("2023-11-02 08:30").AsTime()
	require.NoError(t, err)
	assert.Equal(t, time.November, ts.Month())
}

func TestValueOf_ConvertsDecodedData(t *testing.T) {
	v := ValueOf(map[string]any{
		"list": []any{"a", 1, true},
		"n":    nil,
	})
	require.Equal(t, KindMap, v.Kind())

	m, _ := v.AsMap()
	list, _ := m.Get("list")
	items, err := list.AsList()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", int64(1), true}, list.Interface())
	assert.Len(t, items, 3)

	n, _ := m.Get("n")
	assert.True(t, n.IsNull())
}

func TestContext_UpdatePagesIsAtomic(t *testing.T) {
	ctx := NewContext("/src", "/out")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx.UpdatePages(func(pages []*Page) []*Page {
				for _, p := range pages {
					if p.File == "/src/shared.jpg" {
						return pages
					}
				}
				return append(pages, NewPage("/src/shared.jpg"))
			})
		}()
	}
	wg.Wait()

	assert.Len(t, ctx.Pages(), 1)
}

func TestContext_DataExposesCollectionsAndExtras(t *testing.T) {
	ctx := NewContext("/src", "/out")
	ctx.Title = "Blog"
	ctx.Config.Set("url", String("https://example.org"))

	post := NewPage("/src/_posts/2024-01-01-a.md")
	post.Title = "A"
	ctx.Posts = []*Page{post}
	ctx.AddPage(NewPage("/src/about.md"))
	ctx.SetExtra("category_tree", []string{"go"})

	data := ctx.Data()
	assert.Equal(t, "Blog", data["title"])
	assert.Equal(t, "https://example.org", data["url"])
	require.Len(t, data["posts"], 1)
	require.Len(t, data["pages"], 1)
	assert.Equal(t, []string{"go"}, data["category_tree"])
}

func TestPaginator_DataOmitsAbsentLinks(t *testing.T) {
	p := &Paginator{PageNumber: 1, TotalPages: 2, PageSize: 5, NextPageURL: "/page/2/index.html"}
	data := p.Data()

	_, hasPrev := data["previous_page_url"]
	assert.False(t, hasPrev)
	assert.Equal(t, "/page/2/index.html", data["next_page_url"])
	assert.Equal(t, 2, data["next_page"])
}

func TestURLFromPath(t *testing.T) {
	assert.Equal(t, "/", URLFromPath("index.html"))
	assert.Equal(t, "/blog/", URLFromPath("blog/index.html"))
	assert.Equal(t, "/about.html", URLFromPath("about.html"))
	assert.Equal(t, "/css/site.css", URLFromPath("/css/site.css"))
}

func TestSlugify_Blank(t *testing.T) {
	assert.Equal(t, "", Slugify("   "))
	assert.Equal(t, "travel", Slugify(" travel "))
}
