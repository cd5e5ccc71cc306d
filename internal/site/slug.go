package site

import (
	"strings"

	"github.com/goliatone/go-slug"
)

// Slugify normalizes s for use as a URL segment. Input the slug library
// rejects falls back to a lower-cased, dash-joined form.
func Slugify(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if out, err := slug.Normalize(s); err == nil && out != "" {
		return out
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
