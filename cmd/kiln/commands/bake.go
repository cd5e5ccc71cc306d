package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/kiln/internal/build"
	"git.home.luguber.info/inful/kiln/internal/logfields"
	"git.home.luguber.info/inful/kiln/internal/metrics"
)

// BakeCmd implements the 'bake' command.
type BakeCmd struct {
	SkipFileOnError bool   `name:"skip-file-on-error" help:"Skip files that fail to render instead of aborting"`
	MetricsFile     string `name:"metrics-file" help:"Write Prometheus metrics in textfile format after the bake"`
}

func (b *BakeCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()
	logger := loggerOf(g)

	fs := afero.NewOsFs()
	cfg, err := loadSite(fs, logger, root.Source)
	if err != nil {
		return err
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if b.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	svc := build.NewBuildService(fs).WithLogger(logger).WithRecorder(recorder)
	result, err := svc.Run(ctx, build.BuildRequest{Config: cfg, SkipFileOnError: b.SkipFileOnError})
	if prom != nil {
		if werr := prom.WriteTextfile(b.MetricsFile); werr != nil {
			logger.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(werr))
		}
	}
	if err != nil {
		return err
	}
	printSummary(os.Stdout, result)
	return nil
}

// printSummary writes the user-facing outcome of a bake.
func printSummary(w io.Writer, r *build.BuildResult) {
	_, _ = fmt.Fprintf(w, "Baked %d posts and %d pages into %s in %s\n", r.Posts, r.Pages, r.OutputPath, r.Duration.Round(time.Millisecond))
	if r.Report == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "  written: %d, copied: %d, unchanged: %d, skipped: %d\n",
		len(r.Report.Written), len(r.Report.Copied), len(r.Report.Unchanged), len(r.Report.Skipped))
	for _, s := range r.Report.Skipped {
		_, _ = fmt.Fprintf(w, "  skipped %s: %s\n", s.OutputPath, s.Message)
	}
}
