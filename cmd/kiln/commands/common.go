package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/kiln/internal/config"
	"git.home.luguber.info/inful/kiln/internal/logfields"
)

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
}

// CLI definition and global flags.
type CLI struct {
	Source    string `short:"s" help:"Site source folder" default:"." type:"path"`
	Verbose   bool   `short:"v" help:"Enable verbose logging"`
	LogLevel  string `name:"log-level" env:"KILN_LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" env:"KILN_LOG_FORMAT" default:"text" help:"Log format (text, json)"`

	Bake    BakeCmd    `cmd:"" default:"1" help:"Render the site into its destination folder"`
	Taste   TasteCmd   `cmd:"" help:"Bake, serve the output and rebuild on changes"`
	Init    InitCmd    `cmd:"" help:"Create a starter site"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// AfterApply runs after flag parsing; it sets up logging once.
func (c *CLI) AfterApply(g *Global) error {
	logger := newLogger(os.Stderr, c.LogLevel, c.LogFormat, c.Verbose)
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}
	return nil
}

func newLogger(w io.Writer, level, format string, verbose bool) *slog.Logger {
	lvl := config.NormalizeLogLevel(level).SlogLevel()
	if verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if config.NormalizeLogFormat(format) == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadSite loads .env files and the site configuration from the source folder.
func loadSite(fs afero.Fs, logger *slog.Logger, source string) (*config.Config, error) {
	loaded, err := config.LoadEnv(source)
	if err != nil {
		return nil, err
	}
	for _, f := range loaded {
		logger.Debug("Loaded environment file", logfields.File(f))
	}
	return config.Load(fs, source)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func loggerOf(g *Global) *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}
