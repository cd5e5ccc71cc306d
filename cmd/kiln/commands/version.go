package commands

import (
	"fmt"

	"git.home.luguber.info/inful/kiln/internal/version"
)

// VersionCmd prints the build identity.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Println(version.Get().String())
	return nil
}
