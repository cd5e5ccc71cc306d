// Package errors provides the classified error primitives used across kiln.
//
// Every failure that crosses a package boundary is expressed as a
// ClassifiedError carrying a category (config, render, layout, filesystem,
// ...), a severity and a small structured context. The CLI adapter maps
// categories to process exit codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryLayout, "layout render failed").
//		WithContext("layout", "post").
//		WithContext("output_path", path).
//		Build()
package errors
