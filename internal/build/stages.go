package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/kiln/internal/config"
	"git.home.luguber.info/inful/kiln/internal/discovery"
	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/logfields"
	"git.home.luguber.info/inful/kiln/internal/markup"
	"git.home.luguber.info/inful/kiln/internal/metrics"
	"git.home.luguber.info/inful/kiln/internal/render"
	"git.home.luguber.info/inful/kiln/internal/site"
	"git.home.luguber.info/inful/kiln/internal/templating"
)

// StageName identifies a bake stage.
type StageName string

// Canonical stage names.
const (
	StagePrepare  StageName = "prepare"
	StageDiscover StageName = "discover"
	StageGenerate StageName = "generate"
	StageRender   StageName = "render"
	StagePublish  StageName = "publish"
)

// stage pairs a name with its executing function.
type stage struct {
	name StageName
	fn   func(ctx context.Context, st *buildState) error
}

// buildState carries everything the stages share during one bake.
type buildState struct {
	fs       afero.Fs
	cfg      *config.Config
	req      BuildRequest
	logger   *slog.Logger
	recorder metrics.Recorder

	before    []Transform
	after     []Transform
	processor *render.Processor
	site      *site.Context
	report    *render.Report
}

func stages() []stage {
	return []stage{
		{StagePrepare, stagePrepare},
		{StageDiscover, stageDiscover},
		{StageGenerate, stageGenerate},
		{StageRender, stageRender},
		{StagePublish, stagePublish},
	}
}

// runStages executes stages in order, recording timing and stopping on the
// first error.
func runStages(ctx context.Context, st *buildState, list []stage, durations map[StageName]time.Duration) error {
	for _, s := range list {
		if err := ctx.Err(); err != nil {
			st.recorder.IncStageResult(string(s.name), metrics.ResultCanceled)
			return err
		}
		logger := st.logger.With(logfields.Stage(string(s.name)))
		logger.Debug("Stage started")

		t0 := time.Now()
		err := s.fn(ctx, st)
		dur := time.Since(t0)
		durations[s.name] = dur
		st.recorder.ObserveStageDuration(string(s.name), dur)

		result := stageResult(s.name, err, st)
		st.recorder.IncStageResult(string(s.name), result)
		logger.Debug("Stage finished", logfields.DurationMS(float64(dur.Microseconds())/1000), slog.String("result", string(result)))
		if err != nil {
			return err
		}
	}
	return nil
}

func stageResult(name StageName, err error, st *buildState) metrics.ResultLabel {
	switch {
	case err == nil && name == StageRender && st.report.HasSkips():
		return metrics.ResultWarning
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}

// stagePrepare builds the engines, the processor and the transform lists,
// and makes sure the destination exists.
func stagePrepare(_ context.Context, st *buildState) error {
	cfg := st.cfg
	engine, err := templating.New(cfg.Engine, st.fs, filepath.Join(cfg.Source, templating.IncludesDir))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrepare, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to create template engine").
			WithContext("engine", cfg.Engine).Build())
	}
	md := markup.NewGoldmark(cfg.MarkdownOptions())

	st.processor = render.NewProcessor(st.fs, engine, md,
		render.WithPolicy(render.PolicyFromSkip(cfg.SkipFileOnError || st.req.SkipFileOnError)),
		render.WithStrictLayouts(cfg.StrictLayouts),
		render.WithExcerptSeparator(cfg.ExcerptSeparator),
		render.WithLogger(st.logger),
		render.WithRecorder(st.recorder),
	)

	st.before = append(BeforeProcessing(st.fs, cfg, st.logger, st.recorder), st.req.Before...)
	after, err := AfterProcessing(st.fs, cfg, st.logger, st.recorder)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrepare, err)
	}
	st.after = append(after, st.req.After...)

	if err := st.fs.MkdirAll(cfg.Destination, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrPrepare, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create destination").
			WithContext("path", cfg.Destination).Build())
	}
	return nil
}

func stageDiscover(ctx context.Context, st *buildState) error {
	s, err := discovery.New(st.fs, st.cfg, st.logger).Discover(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDiscovery, err)
	}
	st.site = s
	st.logger.Info("Discovered content", slog.Int("posts", len(s.Posts)), slog.Int("pages", len(s.Pages())))
	return nil
}

func stageGenerate(ctx context.Context, st *buildState) error {
	return runTransforms(ctx, st, st.before)
}

func stageRender(ctx context.Context, st *buildState) error {
	report, err := st.processor.Process(ctx, st.site)
	st.report = report
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	for _, skipped := range report.Skipped {
		st.logger.Warn("Skipped file", logfields.OutputPath(skipped.OutputPath),
			logfields.Layout(skipped.Layout), slog.String("reason", skipped.Message))
	}
	st.logger.Info("Rendered site",
		slog.Int("processed", report.Processed),
		slog.Int("written", len(report.Written)),
		slog.Int("copied", len(report.Copied)),
		slog.Int("unchanged", len(report.Unchanged)),
		slog.Int("skipped", len(report.Skipped)))
	return nil
}

func stagePublish(ctx context.Context, st *buildState) error {
	return runTransforms(ctx, st, st.after)
}

func runTransforms(ctx context.Context, st *buildState, ts []Transform) error {
	for _, t := range ts {
		if err := ctx.Err(); err != nil {
			return err
		}
		t0 := time.Now()
		if err := t.Transform(ctx, st.site); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("%w: %s: %w", ErrTransform, t.Name(), err)
		}
		st.logger.Debug("Transform finished", logfields.Generator(t.Name()),
			logfields.DurationMS(float64(time.Since(t0).Microseconds())/1000))
	}
	return nil
}
