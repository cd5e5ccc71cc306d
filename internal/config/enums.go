package config

import (
	"log/slog"

	"git.home.luguber.info/inful/kiln/internal/foundation/normalization"
	"git.home.luguber.info/inful/kiln/internal/templating"
)

// EngineName identifies a template engine.
type EngineName string

const (
	EngineLiquid     EngineName = templating.EngineLiquid
	EngineGoTemplate EngineName = templating.EngineGoTemplate
)

var engineNormalizer = normalization.NewNormalizer(map[string]EngineName{
	"liquid":        EngineLiquid,
	"pongo2":        EngineLiquid,
	"django":        EngineLiquid,
	"gotemplate":    EngineGoTemplate,
	"go":            EngineGoTemplate,
	"html/template": EngineGoTemplate,
}, EngineLiquid)

// NormalizeEngine maps engine aliases onto a known engine, defaulting to liquid.
func NormalizeEngine(raw string) EngineName {
	return engineNormalizer.Normalize(raw)
}

// ParseEngine is NormalizeEngine that rejects unknown names.
func ParseEngine(raw string) (EngineName, error) {
	return engineNormalizer.NormalizeWithError(raw)
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps raw onto a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// SlogLevel converts the level for log/slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// NormalizeLogFormat maps raw onto a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}
