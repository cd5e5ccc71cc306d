package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".gif":  {},
	".ico":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
	".webp": {},
	".svg":  {},
}

// IsImage reports whether path has an image extension.
func IsImage(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// copyIfNewer copies src to dst when dst is missing or src was modified
// strictly later. It reports whether a copy happened.
func copyIfNewer(fs afero.Fs, src, dst string) (bool, error) {
	srcInfo, err := fs.Stat(src)
	if err != nil {
		return false, err
	}
	if dstInfo, err := fs.Stat(dst); err == nil {
		if !srcInfo.ModTime().After(dstInfo.ModTime()) {
			return false, nil
		}
	}

	in, err := fs.Open(src)
	if err != nil {
		return false, err
	}
	defer func() { _ = in.Close() }()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm()|0o200)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return false, fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return false, err
	}
	return true, nil
}

func ensureDir(fs afero.Fs, file string) error {
	return fs.MkdirAll(filepath.Dir(file), 0o755)
}
