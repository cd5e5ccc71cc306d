package markup

import (
	"net/url"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// LinkRel is the rel value applied to links that open in a new tab.
const LinkRel = "noopener noreferrer nofollow"

// externalLinks marks absolute links and autolinks to open in a new tab.
type externalLinks struct{}

func (externalLinks) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			if isAbsolute(string(node.Destination)) {
				markExternal(node)
			}
		case *ast.AutoLink:
			if node.AutoLinkType == ast.AutoLinkURL && isAbsolute(string(node.URL(source))) {
				markExternal(node)
			}
		}
		return ast.WalkContinue, nil
	})
}

func markExternal(n ast.Node) {
	n.SetAttributeString("target", []byte("_blank"))
	n.SetAttributeString("rel", []byte(LinkRel))
}

func isAbsolute(dest string) bool {
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return u.IsAbs()
}
