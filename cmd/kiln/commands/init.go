package commands

import (
	"fmt"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/kiln/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing files"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	fmt.Printf("Creating a starter site in %s\n", root.Source)
	if err := config.Init(afero.NewOsFs(), root.Source, i.Force); err != nil {
		return err
	}
	fmt.Println("Site initialized; run 'kiln bake' to render it")
	return nil
}
