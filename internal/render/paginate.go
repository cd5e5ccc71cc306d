package render

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/kiln/internal/site"
)

// DefaultPaginateLink is the link template for pages 2..N.
const DefaultPaginateLink = "/page/:page/index.html"

// Slot is one page of a paginated listing.
type Slot struct {
	URL        string
	OutputPath string
	Paginator  *site.Paginator
}

// Paginate lays out ceil(totalPosts/pageSize) pages, never fewer than one.
// Page 1 keeps firstURL and firstOutput; later pages substitute :page in link
// and map the result under outputFolder, appending index.html to directory
// links. Previous and next URLs are derived from the finished list.
func Paginate(pageSize, totalPosts int, link, firstURL, firstOutput, outputFolder string) ([]Slot, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPaginate, pageSize)
	}
	if link == "" {
		link = DefaultPaginateLink
	}
	total := (totalPosts + pageSize - 1) / pageSize
	if total < 1 {
		total = 1
	}

	slots := make([]Slot, total)
	for i := range slots {
		number := i + 1
		slot := Slot{URL: firstURL, OutputPath: firstOutput}
		if number > 1 {
			slot.URL = strings.ReplaceAll(link, ":page", strconv.Itoa(number))
			slot.OutputPath = linkOutputPath(outputFolder, slot.URL)
		}
		slot.Paginator = &site.Paginator{
			PageNumber: number,
			TotalPages: total,
			PageSize:   pageSize,
			TotalPosts: totalPosts,
		}
		slots[i] = slot
	}

	for i, slot := range slots {
		if i > 0 {
			slot.Paginator.PreviousPageURL = slots[i-1].URL
		}
		if i+1 < len(slots) {
			slot.Paginator.NextPageURL = slots[i+1].URL
		}
	}
	return slots, nil
}

// PostsForPage returns the posts shown on 1-based page number.
func PostsForPage(posts []*site.Page, pageSize, number int) []*site.Page {
	start := (number - 1) * pageSize
	if pageSize <= 0 || start >= len(posts) || start < 0 {
		return nil
	}
	end := min(start+pageSize, len(posts))
	return posts[start:end]
}

func linkOutputPath(outputFolder, link string) string {
	rel := filepath.FromSlash(strings.TrimLeft(link, "/"))
	path := filepath.Join(outputFolder, rel)
	if strings.HasSuffix(link, "/") {
		path = filepath.Join(path, "index.html")
	}
	return path
}

func paginateSize(v site.Value) (int, error) {
	n, err := v.AsInt()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPaginate, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPaginate, n)
	}
	return n, nil
}
