package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	ferrors "git.home.luguber.info/inful/kiln/internal/foundation/errors"
)

// envFiles are loaded in precedence order; godotenv never overrides a
// variable that is already set, so earlier files win.
var envFiles = []string{".env.local", ".env"}

// LoadEnv loads .env.local and .env from dir into the process environment.
// Missing files are skipped. It returns the files that were loaded.
func LoadEnv(dir string) ([]string, error) {
	var loaded []string
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to load environment file").
				WithContext("path", path).Build()
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
