package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/kiln/internal/config"
	"git.home.luguber.info/inful/kiln/internal/render"
)

// BuildService is the canonical interface for baking a site.
type BuildService interface {
	// Run executes prepare → discover → generate → render → publish.
	// The result is returned even when err is non-nil.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains the inputs of one bake.
type BuildRequest struct {
	// Config is the loaded site configuration.
	Config *config.Config

	// SkipFileOnError abandons failing render contexts instead of aborting.
	// It is OR-ed with the skip_file_on_error setting.
	SkipFileOnError bool

	// Before and After are appended to the transforms derived from Config.
	Before []Transform
	After  []Transform
}

// BuildResult contains the outcome of a bake.
type BuildResult struct {
	// RunID correlates the log lines of one bake.
	RunID string

	Status BuildStatus

	// Report is the page processor's summary; nil when rendering never ran.
	Report *render.Report

	// Posts and Pages count the discovered content, generated pages included.
	Posts int
	Pages int

	// StageDurations holds the wall time of every stage that ran.
	StageDurations map[StageName]time.Duration

	OutputPath string
	Duration   time.Duration
	StartTime  time.Time
	EndTime    time.Time
}

// BuildStatus represents the outcome of a bake.
type BuildStatus string

const (
	// BuildStatusSuccess indicates every item was written.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusWarning indicates the bake finished with skipped files.
	BuildStatusWarning BuildStatus = "warning"

	// BuildStatusFailed indicates the bake stopped on an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the context was cancelled mid-bake.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning ||
		s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the bake produced a complete output tree,
// possibly minus skipped files.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning
}
