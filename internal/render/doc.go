// Package render is the page-rendering pipeline: it resolves layouts,
// expands pagination, extracts excerpts and writes every content item of a
// site to the output folder.
package render
