package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "layout", err: LayoutError("layout failed").Build(), expected: 9},
		{name: "render", err: RenderError("render failed").Build(), expected: 9},
		{name: "filesystem", err: FileSystemError("copy failed").Build(), expected: 11},
		{name: "internal", err: InternalError("oops").Build(), expected: 10},
		{name: "unclassified", err: errors.New("unknown error"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	internal := InternalError("internal issue").Build()
	if got := quiet.FormatError(internal); !strings.Contains(got, "use -v") {
		t.Errorf("expected non-verbose hint, got %q", got)
	}
	if got := verbose.FormatError(internal); !strings.Contains(got, "internal issue") {
		t.Errorf("expected verbose message, got %q", got)
	}

	layout := LayoutError("layout failed").WithContext("layout", "post").Build()
	if got := quiet.FormatError(layout); !strings.Contains(got, "layout=post") {
		t.Errorf("expected user-facing categories to be shown in full, got %q", got)
	}
	if got := quiet.FormatError(nil); got != "" {
		t.Errorf("expected empty string for nil error, got %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, stderr bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.stderr = &stderr
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("missing source").WithContext("path", "site").Build())

	if code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}
	if !strings.Contains(stderr.String(), "missing source") {
		t.Errorf("expected stderr message, got %q", stderr.String())
	}
	if !strings.Contains(logs.String(), "category=config") {
		t.Errorf("expected category in log output, got %q", logs.String())
	}
}
