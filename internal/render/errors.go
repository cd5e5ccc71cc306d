package render

import (
	"errors"
	"fmt"

	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
)

var (
	// ErrPageProcessing wraps every failure that aborts a run under PolicyAbort.
	ErrPageProcessing = errors.New("page processing failed")
	// ErrContentRender marks template or pagination failures on a page body.
	ErrContentRender = errors.New("content render failed")
	// ErrLayoutRender marks failures while applying a layout.
	ErrLayoutRender = errors.New("layout render failed")
	// ErrLayoutNotFound is returned for missing layouts when strict layouts are on.
	ErrLayoutNotFound = errors.New("layout not found")
	// ErrInvalidPaginate is returned for non-positive or non-integer page sizes.
	ErrInvalidPaginate = errors.New("invalid paginate value")
)

func pageError(stage error, outputPath, layout string, cause error) error {
	category := ferrors.CategoryRender
	message := fmt.Sprintf("failed to process %s", outputPath)
	if errors.Is(stage, ErrLayoutRender) || errors.Is(stage, ErrLayoutNotFound) {
		category = ferrors.CategoryLayout
		message = fmt.Sprintf("failed to process layout %s for %s", layout, outputPath)
	}
	b := ferrors.WrapError(fmt.Errorf("%w: %w: %w", ErrPageProcessing, stage, cause), category, message).
		WithContext("output_path", outputPath)
	if layout != "" {
		b = b.WithContext("layout", layout)
	}
	return b.Build()
}

func ioError(op, path string, cause error) error {
	return ferrors.WrapError(cause, ferrors.CategoryFileSystem, op).
		Fatal().
		WithContext("path", path).
		Build()
}
