package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPage       = "page"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyOutputPath = "output_path"
	KeyLayout     = "layout"
	KeyEngine     = "engine"
	KeyGenerator  = "generator"
	KeyGallery    = "gallery"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Page(id string) slog.Attr         { return slog.String(KeyPage, id) }
func File(name string) slog.Attr       { return slog.String(KeyFile, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func OutputPath(p string) slog.Attr    { return slog.String(KeyOutputPath, p) }
func Layout(name string) slog.Attr     { return slog.String(KeyLayout, name) }
func Engine(name string) slog.Attr     { return slog.String(KeyEngine, name) }
func Generator(name string) slog.Attr  { return slog.String(KeyGenerator, name) }
func Gallery(id string) slog.Attr      { return slog.String(KeyGallery, id) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
