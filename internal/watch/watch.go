// Package watch rebuilds a site whenever its sources change.
//
// File system events are collected until the source tree has been quiet for
// the debounce interval, then the batch is filtered through content
// fingerprints and a single rebuild runs. Rebuilds never overlap: events
// arriving during a rebuild start the next batch.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/kiln/internal/config"
	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/logfields"
)

// RebuildFunc bakes the site once.
type RebuildFunc func(ctx context.Context) error

// Watcher watches the source folder of a site.
type Watcher struct {
	source   string
	ignore   []string
	debounce time.Duration
	rebuild  RebuildFunc
	prints   *Fingerprints
	logger   *slog.Logger
}

// New returns a Watcher for cfg's source folder. The destination and the
// thumbnail work folder are never watched, since rebuilds write to them.
func New(fsys afero.Fs, cfg *config.Config, rebuild RebuildFunc, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.WatchDebounce
	if debounce <= 0 {
		debounce = config.DefaultWatchDebounce
	}
	return &Watcher{
		source:   filepath.Clean(cfg.Source),
		ignore:   []string{filepath.Clean(cfg.Destination), filepath.Join(cfg.Source, cfg.ThumbnailWorkDir)},
		debounce: debounce,
		rebuild:  rebuild,
		prints:   NewFingerprints(fsys),
		logger:   logger,
	}
}

// Run watches until ctx is done. It does not run an initial build.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.prints.Seed(w.source); err != nil {
		w.logger.Warn("Failed to fingerprint sources", logfields.Error(err))
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create file watcher").Build()
	}
	defer func() { _ = fw.Close() }()
	if err := w.addDirs(fw, w.source); err != nil {
		return err
	}
	w.logger.Info("Watching for changes", logfields.Path(w.source), slog.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := map[string]struct{}{}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.Relevant(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.addDirs(fw, ev.Name)
				}
			}
			w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			if _, err := w.HandleBatch(ctx, paths); err != nil {
				w.logger.Warn("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

// HandleBatch rebuilds when any path in the batch really changed. It reports
// whether a rebuild ran.
func (w *Watcher) HandleBatch(ctx context.Context, paths []string) (bool, error) {
	sort.Strings(paths)
	var changed []string
	for _, p := range paths {
		ok, err := w.prints.Changed(p)
		if err != nil {
			w.logger.Warn("Failed to fingerprint file", logfields.File(p), logfields.Error(err))
			ok = true
		}
		if ok {
			changed = append(changed, p)
		}
	}
	if len(changed) == 0 {
		w.logger.Debug("Changes left content untouched, skipping rebuild", logfields.Count(len(paths)))
		return false, nil
	}

	w.logger.Info("Change detected, rebuilding site", logfields.Count(len(changed)), logfields.File(changed[0]))
	start := time.Now()
	if err := w.rebuild(ctx); err != nil {
		return true, err
	}
	w.logger.Info("Rebuild complete", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return true, nil
}

// Relevant filters out ignored folders, hidden files and editor droppings.
func (w *Watcher) Relevant(path string) bool {
	clean := filepath.Clean(path)
	for _, dir := range w.ignore {
		if clean == dir || strings.HasPrefix(clean, dir+string(filepath.Separator)) {
			return false
		}
	}
	base := filepath.Base(clean)
	switch {
	case strings.HasPrefix(base, "."),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"),
		base == "Thumbs.db":
		return false
	}
	return true
}

func (w *Watcher) addDirs(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.source && !w.Relevant(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, fmt.Sprintf("failed to watch %s", path)).Build()
		}
		return nil
	})
}
