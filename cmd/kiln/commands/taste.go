package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/kiln/internal/build"
	"git.home.luguber.info/inful/kiln/internal/config"
	"git.home.luguber.info/inful/kiln/internal/logfields"
	"git.home.luguber.info/inful/kiln/internal/metrics"
	"git.home.luguber.info/inful/kiln/internal/watch"
)

// TasteCmd bakes the site, serves the output and rebuilds on source changes.
type TasteCmd struct {
	Addr     string `name:"addr" default:"127.0.0.1:4000" help:"Address to serve the baked site on"`
	NoServe  bool   `name:"no-serve" help:"Only watch and rebuild; do not start the HTTP server"`
	FailFast bool   `name:"fail-fast" help:"Abort a rebuild on the first failing file instead of skipping it"`
}

func (t *TasteCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()
	logger := loggerOf(g)

	fs := afero.NewOsFs()
	cfg, err := loadSite(fs, logger, root.Source)
	if err != nil {
		return err
	}

	prom := metrics.NewPrometheusRecorder(nil)
	svc := build.NewBuildService(fs).WithLogger(logger).WithRecorder(prom)
	req := build.BuildRequest{Config: cfg, SkipFileOnError: !t.FailFast}
	rebuild := func(ctx context.Context) error {
		_, err := svc.Run(ctx, req)
		return err
	}

	if err := rebuild(ctx); err != nil {
		logger.Error("Initial bake failed; watching for fixes", logfields.Error(err))
	}

	var srv *http.Server
	if !t.NoServe {
		srv = newPreviewServer(t.Addr, cfg, prom)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Preview server failed", logfields.Error(err))
				cancel()
			}
		}()
		logger.Info("Serving site", logfields.URL("http://"+t.Addr+"/"), logfields.Path(cfg.Destination))
	}

	err = watch.New(fs, cfg, rebuild, logger).Run(ctx)

	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("Preview server shutdown error", logfields.Error(serr))
		}
	}
	return err
}

// newPreviewServer serves the destination folder and the build metrics.
func newPreviewServer(addr string, cfg *config.Config, prom *metrics.PrometheusRecorder) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.HTTPHandler())
	mux.Handle("/", http.FileServer(http.Dir(cfg.Destination)))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
