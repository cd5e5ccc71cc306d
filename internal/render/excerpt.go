package render

import (
	"regexp"
	"strings"
)

// DefaultExcerptSeparator is used when neither the page nor the site sets one.
const DefaultExcerptSeparator = "<!--more-->"

var firstBlock = regexp.MustCompile(`(?s)(<(?:p|h\d)>.*?</(?:p|h\d)>)`)

// Excerpt derives a short fragment from rendered HTML. With the separator
// present everything before it is returned, closing a dangling opening <p>.
// Otherwise the first paragraph or heading block is used. ok is false when
// neither yields anything.
func Excerpt(html, separator string) (excerpt string, ok bool) {
	if separator != "" {
		if idx := strings.Index(html, separator); idx >= 0 {
			excerpt = html[:idx]
			if strings.HasPrefix(excerpt, "<p>") && !strings.HasSuffix(excerpt, "</p>") {
				excerpt += "</p>"
			}
			return excerpt, true
		}
	}
	m := firstBlock.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return m[1], true
}
