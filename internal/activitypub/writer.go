// Package activitypub publishes a static ActivityPub presence for the site:
// a webfinger document, the actor profile, the outbox of post announcements
// and the following collection. Every document is checked against an
// embedded JSON schema before it is written.
package activitypub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/kiln/internal/config"
	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
	"git.home.luguber.info/inful/kiln/internal/logfields"
	"git.home.luguber.info/inful/kiln/internal/metrics"
	"git.home.luguber.info/inful/kiln/internal/site"
)

// Writer writes the ActivityPub documents below <output>/<actpub_directory>.
type Writer struct {
	fs       afero.Fs
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	schemas  schemas
}

// NewWriter returns a Writer. It fails only if the embedded schemas do not compile.
func NewWriter(fs afero.Fs, cfg *config.Config, logger *slog.Logger, recorder metrics.Recorder) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := compileSchemas()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to compile activitypub schemas").Build()
	}
	return &Writer{fs: fs, cfg: cfg, logger: logger, recorder: metrics.OrNoop(recorder), schemas: s}, nil
}

// Name identifies the generator in logs and metrics.
func (w *Writer) Name() string { return "activitypub" }

// Transform writes every enabled document. It does nothing when
// actpub_directory is unset.
func (w *Writer) Transform(ctx context.Context, s *site.Context) error {
	ap := w.cfg.ActivityPub
	if !ap.Enabled() {
		return nil
	}
	dir := filepath.Join(s.OutputFolder, filepath.FromSlash(strings.Trim(ap.Directory, "/")))
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create activitypub folder").
			WithContext("path", dir).Build()
	}

	written := 0
	write := func(name, schema string, doc any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writeJSON(filepath.Join(dir, name), schema, doc); err != nil {
			return err
		}
		written++
		return nil
	}

	if err := write("webfinger", schemaWebFinger, BuildWebFinger(w.cfg)); err != nil {
		return err
	}

	key, err := w.publicKey(s.SourceFolder)
	if err != nil {
		return err
	}
	profile, err := BuildProfile(w.cfg, key)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid activitypub profile").Build()
	}
	if err := write("profile.json", schemaProfile, profile); err != nil {
		return err
	}

	if ap.Outbox {
		if ap.PostsPerOutboxPage > 0 {
			index, pages := BuildPagedOutbox(w.cfg, s.Posts, ap.PostsPerOutboxPage)
			if err := write("outbox.json", schemaCollection, index); err != nil {
				return err
			}
			for i, page := range pages {
				if err := write(fmt.Sprintf("outbox%d.json", i+1), schemaCollection, page); err != nil {
					return err
				}
			}
		} else if err := write("outbox.json", schemaCollection, BuildOutbox(w.cfg, s.Posts)); err != nil {
			return err
		}
	}

	if len(ap.Following) > 0 {
		if err := write("following.json", schemaCollection, BuildFollowing(w.cfg)); err != nil {
			return err
		}
	}

	w.recorder.AddGeneratorItems(w.Name(), written)
	w.logger.Info("Wrote ActivityPub documents", logfields.Path(dir), logfields.Count(written))
	return nil
}

// publicKey reads actpub_publickeyfile relative to the source folder and
// joins its lines with \n.
func (w *Writer) publicKey(source string) (string, error) {
	name := w.cfg.ActivityPub.PublicKeyFile
	if name == "" {
		return "", nil
	}
	path := filepath.Join(source, name)
	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read public key file").
			WithContext("path", path).Build()
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n"), nil
}

func (w *Writer) writeJSON(path, schema string, doc any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode activitypub document").
			WithContext("path", path).Build()
	}
	if err := w.schemas.check(schema, buf.Bytes()); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryGenerator, "activitypub document failed schema check").
			WithContext("path", path).Build()
	}
	if err := afero.WriteFile(w.fs, path, buf.Bytes(), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write activitypub document").
			WithContext("path", path).Build()
	}
	w.logger.Debug("Wrote ActivityPub document", logfields.OutputPath(path))
	return nil
}
