package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/logfields"
	"git.home.luguber.info/inful/kiln/internal/metrics"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	fs       afero.Fs
	logger   *slog.Logger
	recorder metrics.Recorder
	newRunID func() string
}

// NewBuildService creates a DefaultBuildService reading and writing through fs.
func NewBuildService(fs afero.Fs) *DefaultBuildService {
	return &DefaultBuildService{
		fs:       fs,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		newRunID: uuid.NewString,
	}
}

// WithLogger sets the base logger; every run adds its run_id.
func (s *DefaultBuildService) WithLogger(l *slog.Logger) *DefaultBuildService {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	s.recorder = metrics.OrNoop(r)
	return s
}

// WithRunIDFunc replaces the run id generator (for testing).
func (s *DefaultBuildService) WithRunIDFunc(fn func() string) *DefaultBuildService {
	if fn != nil {
		s.newRunID = fn
	}
	return s
}

// Run executes the complete bake.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	result := &BuildResult{
		RunID:          s.newRunID(),
		StartTime:      time.Now(),
		StageDurations: map[StageName]time.Duration{},
	}
	logger := s.logger.With(logfields.RunID(result.RunID))

	if req.Config == nil {
		s.finish(logger, result, BuildStatusFailed)
		return result, ferrors.ConfigError("config required").Build()
	}
	result.OutputPath = req.Config.Destination
	logger.Info("Baking site", logfields.Path(req.Config.Source), logfields.OutputPath(req.Config.Destination),
		logfields.Engine(req.Config.Engine))

	st := &buildState{
		fs:       s.fs,
		cfg:      req.Config,
		req:      req,
		logger:   logger,
		recorder: s.recorder,
	}
	err := runStages(ctx, st, stages(), result.StageDurations)
	result.Report = st.report
	if st.site != nil {
		result.Posts = len(st.site.Posts)
		result.Pages = len(st.site.Pages())
	}

	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		s.finish(logger, result, BuildStatusCancelled)
	case err != nil:
		s.finish(logger, result, BuildStatusFailed)
		logger.Error("Bake failed", logfields.Error(err))
	case st.report.HasSkips():
		s.finish(logger, result, BuildStatusWarning)
	default:
		s.finish(logger, result, BuildStatusSuccess)
	}
	return result, err
}

func (s *DefaultBuildService) finish(logger *slog.Logger, result *BuildResult, status BuildStatus) {
	result.Status = status
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	s.recorder.ObserveBuildDuration(result.Duration)
	switch status {
	case BuildStatusSuccess:
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	case BuildStatusWarning:
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeWarning)
	case BuildStatusCancelled:
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
	default:
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
	}
	logger.Info("Bake finished", slog.String("status", string(status)),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
}
