package site

// Paginator describes one page of a paginated listing. Empty URLs mean absent.
type Paginator struct {
	PageNumber      int
	TotalPages      int
	PageSize        int
	TotalPosts      int
	PreviousPageURL string
	NextPageURL     string
	Posts           []*Page
}

// Data exposes the paginator to template engines.
func (p *Paginator) Data() map[string]any {
	if p == nil {
		return nil
	}
	posts := make([]map[string]any, 0, len(p.Posts))
	for _, post := range p.Posts {
		posts = append(posts, post.Data())
	}
	out := map[string]any{
		"page":        p.PageNumber,
		"total_pages": p.TotalPages,
		"per_page":    p.PageSize,
		"total_posts": p.TotalPosts,
		"posts":       posts,
	}
	if p.PreviousPageURL != "" {
		out["previous_page_url"] = p.PreviousPageURL
		if p.PageNumber > 1 {
			out["previous_page"] = p.PageNumber - 1
		}
	}
	if p.NextPageURL != "" {
		out["next_page_url"] = p.NextPageURL
		out["next_page"] = p.PageNumber + 1
	}
	return out
}
