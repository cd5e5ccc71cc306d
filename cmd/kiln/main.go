// Command kiln bakes a Jekyll-style source tree into a static site.
package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/kiln/cmd/kiln/commands"
	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Logger: slog.Default()}
	parser := kong.Parse(&cli,
		kong.Name("kiln"),
		kong.Description("A static site generator for posts, pages and layouts."),
		kong.UsageOnError(),
		kong.Bind(global, &cli),
	)
	err := parser.Run()
	ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
}
