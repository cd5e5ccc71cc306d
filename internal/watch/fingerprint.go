package watch

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/inful/mdfp"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/kiln/internal/frontmatter"
	"git.home.luguber.info/inful/kiln/internal/markup"
)

// Fingerprint hashes a markdown document's front matter and body.
func Fingerprint(content []byte) string {
	header, body, _, _, err := frontmatter.Split(content)
	if err != nil {
		return mdfp.CalculateFingerprintFromParts("", string(content))
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimRight(string(header), "\r\n"), string(body))
}

// Fingerprints remembers the last seen fingerprint of every markdown source so
// that saves without a content change (editor touch, mode change) do not
// trigger a rebuild.
type Fingerprints struct {
	fs   afero.Fs
	mu   sync.Mutex
	sums map[string]string
}

// NewFingerprints returns an empty set reading through fsys.
func NewFingerprints(fsys afero.Fs) *Fingerprints {
	return &Fingerprints{fs: fsys, sums: map[string]string{}}
}

// Seed records the fingerprint of every markdown file below root.
func (f *Fingerprints) Seed(root string) error {
	return afero.Walk(f.fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() || !markup.IsMarkdown(path) {
			return nil
		}
		_, err = f.Changed(path)
		return err
	})
}

// Changed reports whether path differs from its last recorded state and
// records the new one. Files that are not markdown always count as changed,
// as do removed files.
func (f *Fingerprints) Changed(path string) (bool, error) {
	if !markup.IsMarkdown(path) {
		return true, nil
	}
	data, err := afero.ReadFile(f.fs, path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			delete(f.sums, path)
			return true, nil
		}
		return false, err
	}
	sum := Fingerprint(data)
	old, seen := f.sums[path]
	f.sums[path] = sum
	return !seen || old != sum, nil
}
