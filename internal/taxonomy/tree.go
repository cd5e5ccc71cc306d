package taxonomy

import (
	"context"

	"git.home.luguber.info/inful/kiln/internal/logfields"
	"git.home.luguber.info/inful/kiln/internal/site"
)

// TreeKey is the site variable holding the category tree.
const TreeKey = "category_tree"

// Node is one category page in the tree with its subcategories and the
// posts filed directly under it.
type Node struct {
	Name     string
	Page     *site.Page
	Children []*Node
	Posts    []*site.Page
}

// URL returns the node page URL.
func (n *Node) URL() string { return n.Page.URL }

// Data exposes the node to template engines.
func (n *Node) Data() map[string]any {
	children := make([]map[string]any, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, c.Data())
	}
	posts := make([]map[string]any, 0, len(n.Posts))
	for _, p := range n.Posts {
		posts = append(posts, p.Data())
	}
	return map[string]any{
		"name":          n.Name,
		"url":           n.URL(),
		"subcategories": children,
		"posts":         posts,
	}
}

// BuildTree links the generated category and subcategory pages of s. Only
// categories that some post uses get a node; posts with a subcategory are
// filed under the matching child instead of the top-level node.
func BuildTree(s *site.Context) []*Node {
	used := map[string]map[string]bool{}
	for _, post := range s.Posts {
		sub := post.Bag.GetString(SubcategoryKey)
		for _, c := range post.Categories {
			if used[c] == nil {
				used[c] = map[string]bool{}
			}
			if sub != "" {
				used[c][sub] = true
			}
		}
	}

	pages := s.Pages()
	var roots []*Node
	byName := map[string]*Node{}
	for _, page := range pages {
		name := page.Bag.GetString(CategoryKey)
		if name == "" || page.Bag.Has(SubcategoryKey) || byName[name] != nil || used[name] == nil {
			continue
		}
		node := &Node{Name: name, Page: page}
		byName[name] = node
		roots = append(roots, node)
	}
	for _, page := range pages {
		name, sub := page.Bag.GetString(CategoryKey), page.Bag.GetString(SubcategoryKey)
		parent := byName[name]
		if parent == nil || sub == "" || !used[name][sub] || parent.child(sub) != nil {
			continue
		}
		parent.Children = append(parent.Children, &Node{Name: sub, Page: page})
	}

	for _, post := range s.Posts {
		node := byName[primaryCategory(post)]
		if node == nil {
			continue
		}
		sub := post.Bag.GetString(SubcategoryKey)
		if sub == "" {
			node.Posts = append(node.Posts, post)
			continue
		}
		if child := node.child(sub); child != nil {
			child.Posts = append(child.Posts, post)
		}
	}
	return roots
}

func (n *Node) child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// TreeBuilder publishes the category tree as site.category_tree. It must run
// after the category and subcategory generators.
type TreeBuilder struct {
	options
}

// NewTreeBuilder returns a TreeBuilder.
func NewTreeBuilder(opts ...Option) *TreeBuilder {
	return &TreeBuilder{options: newOptions(opts)}
}

// Name identifies the transform in logs.
func (b *TreeBuilder) Name() string { return TreeKey }

// Transform builds the tree and stores it on the site.
func (b *TreeBuilder) Transform(ctx context.Context, s *site.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	roots := BuildTree(s)
	data := make([]map[string]any, 0, len(roots))
	for _, r := range roots {
		data = append(data, r.Data())
	}
	s.SetExtra(TreeKey, data)
	b.logger.Debug("Built category tree", logfields.Count(len(roots)))
	return nil
}
