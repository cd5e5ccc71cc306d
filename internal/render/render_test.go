package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/kiln/internal/site"
)

func TestPaginate_NinetyFivePostsTenPerPage(t *testing.T) {
	slots, err := Paginate(10, 95, "", "/index.html", "/out/index.html", "/out")
	require.NoError(t, err)
	require.Len(t, slots, 10)

	first := slots[0]
	assert.Equal(t, "/index.html", first.URL)
	assert.Equal(t, "/out/index.html", first.OutputPath)
	assert.Empty(t, first.Paginator.PreviousPageURL)
	assert.Equal(t, "/page/2/index.html", first.Paginator.NextPageURL)

	fifth := slots[4].Paginator
	assert.Equal(t, 5, fifth.PageNumber)
	assert.Equal(t, slots[3].URL, fifth.PreviousPageURL)
	assert.Equal(t, slots[5].URL, fifth.NextPageURL)
	assert.Equal(t, "/page/4/index.html", fifth.PreviousPageURL)

	last := slots[9]
	assert.Empty(t, last.Paginator.NextPageURL)
	assert.Equal(t, "/out/page/10/index.html", last.OutputPath)

	for _, s := range slots {
		assert.Equal(t, 10, s.Paginator.TotalPages)
		assert.Equal(t, 10, s.Paginator.PageSize)
	}
}

func TestPaginate_DirectoryLinkGetsIndexFile(t *testing.T) {
	slots, err := Paginate(2, 3, "/blog/:page/", "/blog/index.html", "/out/blog/index.html", "/out")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "/blog/2/", slots[1].URL)
	assert.Equal(t, "/out/blog/2/index.html", slots[1].OutputPath)
	assert.Equal(t, "/blog/index.html", slots[1].Paginator.PreviousPageURL)
}

func TestPaginate_ZeroPostsYieldsOnePage(t *testing.T) {
	slots, err := Paginate(5, 0, "", "/index.html", "/out/index.html", "/out")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Empty(t, slots[0].Paginator.NextPageURL)
	assert.Empty(t, slots[0].Paginator.PreviousPageURL)
}

func TestPaginate_InvalidSize(t *testing.T) {
	_, err := Paginate(0, 10, "", "/index.html", "/out/index.html", "/out")
	require.ErrorIs(t, err, ErrInvalidPaginate)

	_, err = paginateSize(site.String("ten"))
	require.ErrorIs(t, err, ErrInvalidPaginate)

	_, err = paginateSize(site.Int(-2))
	require.ErrorIs(t, err, ErrInvalidPaginate)

	n, err := paginateSize(site.String("4"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPostsForPage(t *testing.T) {
	posts := make([]*site.Page, 5)
	for i := range posts {
		posts[i] = site.NewPage("")
	}
	assert.Len(t, PostsForPage(posts, 2, 1), 2)
	assert.Len(t, PostsForPage(posts, 2, 3), 1)
	assert.Same(t, posts[4], PostsForPage(posts, 2, 3)[0])
	assert.Empty(t, PostsForPage(posts, 2, 4))
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		separator string
		want      string
		ok        bool
	}{
		{
			name:      "separator after paragraph",
			html:      "<p>Intro</p><!--more--><p>Rest</p>",
			separator: "<!--more-->",
			want:      "<p>Intro</p>",
			ok:        true,
		},
		{
			name:      "separator inside paragraph closes it",
			html:      "<p>Intro <!--more--> rest</p>",
			separator: "<!--more-->",
			want:      "<p>Intro </p>",
			ok:        true,
		},
		{
			name:      "custom separator",
			html:      "<h2>T</h2>\n<p>A</p>[cut]<p>B</p>",
			separator: "[cut]",
			want:      "<h2>T</h2>\n<p>A</p>",
			ok:        true,
		},
		{
			name:      "no separator takes first paragraph",
			html:      "<p>First</p>\n<p>Second</p>",
			separator: "<!--more-->",
			want:      "<p>First</p>",
			ok:        true,
		},
		{
			name:      "heading spans newlines",
			html:      "<div><h3>Multi\nline</h3><p>x</p></div>",
			separator: "<!--more-->",
			want:      "<h3>Multi\nline</h3>",
			ok:        true,
		},
		{
			name:      "nothing matches",
			html:      "<div>plain</div>",
			separator: "<!--more-->",
			ok:        false,
		},
		{
			name: "empty separator falls back to first block",
			html: "<p>Only</p>",
			want: "<p>Only</p>",
			ok:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Excerpt(tt.html, tt.separator)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicyFromSkip(t *testing.T) {
	assert.Equal(t, PolicySkip, PolicyFromSkip(true))
	assert.Equal(t, PolicyAbort, PolicyFromSkip(false))
	assert.Equal(t, "skip", PolicySkip.String())
}
