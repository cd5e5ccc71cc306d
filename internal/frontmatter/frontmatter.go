// Package frontmatter splits `---` delimited YAML headers from content and
// decodes them into ordered site bags.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/kiln/internal/site"
)

// ErrMissingClosingDelimiter indicates the document started with a front-matter
// delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Style captures the newline shape of a document so it can be rewritten stably.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Split separates the YAML header from the body.
//
// If the document does not open with a delimiter line, had is false and body
// is the full input. Trailing spaces after either delimiter are tolerated, and
// a closing delimiter at end of input needs no newline.
func Split(content []byte) (header []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	nl := []byte(style.Newline)

	first, rest, _ := cutLine(content, nl)
	if !isDelimiter(first) {
		return nil, content, false, style, nil
	}

	offset := 0
	for {
		line, next, hasNext := cutLine(rest[offset:], nl)
		if isDelimiter(line) {
			header = rest[:offset]
			if hasNext {
				body = next
			} else {
				body = []byte{}
			}
			return header, body, true, style, nil
		}
		if !hasNext {
			return nil, nil, false, style, ErrMissingClosingDelimiter
		}
		offset += len(line) + len(nl)
	}
}

// Join reassembles a document from a raw header and body.
func Join(header []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	out := make([]byte, 0, len(header)+len(body)+2*(3+len(nl)))
	out = append(out, "---"+nl...)
	out = append(out, header...)
	out = append(out, "---"+nl...)
	out = append(out, body...)
	return out
}

// ParseYAML decodes a raw header (without delimiters) into an ordered bag.
func ParseYAML(header []byte) (*site.Bag, error) {
	bag := site.NewBag()
	if len(bytes.TrimSpace(header)) == 0 {
		return bag, nil
	}
	if err := yaml.Unmarshal(header, bag); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	return bag, nil
}

// Parse splits content and decodes its header. Documents without a header
// yield an empty bag and had=false.
func Parse(content []byte) (bag *site.Bag, body []byte, had bool, err error) {
	header, body, had, _, err := Split(content)
	if err != nil {
		return nil, nil, false, err
	}
	bag, err = ParseYAML(header)
	if err != nil {
		return nil, nil, false, err
	}
	return bag, body, had, nil
}

// Header decodes the header of content, returning an empty bag when there is
// none or it cannot be parsed.
func Header(content string) *site.Bag {
	bag, _, _, err := Parse([]byte(content))
	if err != nil {
		return site.NewBag()
	}
	return bag
}

// ExcludeHeader returns content without its header. Malformed headers leave
// the content untouched.
func ExcludeHeader(content string) string {
	_, body, had, _, err := Split([]byte(content))
	if err != nil || !had {
		return content
	}
	return string(body)
}

// HasHeader reports whether content opens with a front-matter delimiter.
func HasHeader(content []byte) bool {
	style := detectStyle(content)
	first, _, _ := cutLine(content, []byte(style.Newline))
	return isDelimiter(first)
}

func cutLine(b []byte, nl []byte) (line []byte, rest []byte, found bool) {
	if i := bytes.Index(b, nl); i >= 0 {
		return b[:i], b[i+len(nl):], true
	}
	return b, nil, false
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t")) == "---"
}

func detectStyle(content []byte) Style {
	newline := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		newline = "\r\n"
	}
	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
