package workspace

import (
	"path/filepath"

	"github.com/rohmanhakim/paper-review/pkg/fileutil"
)

// Layout names the directories a run works in, relative to Root.
type Layout struct {
	Root     string
	CacheDir string
	DataDir  string
}

// Init prepares the working directory on first run: it creates the cache
// and data directories and keeps the cache out of version control. It is
// safe to call on every run and reports whether .gitignore changed.
func Init(layout Layout) (bool, error) {
	root := layout.Root
	if root == "" {
		root = "."
	}

	for _, dir := range []string{layout.CacheDir, layout.DataDir} {
		if dir == "" {
			continue
		}
		if err := fileutil.EnsureDir(resolve(root, dir)); err != nil {
			return false, err
		}
	}

	if layout.CacheDir == "" {
		return false, nil
	}
	changed, err := fileutil.EnsureLine(filepath.Join(root, ".gitignore"), ignoreEntry(root, layout.CacheDir))
	if err != nil {
		return false, err
	}
	return changed, nil
}

func resolve(root string, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// ignoreEntry is the .gitignore pattern for dir, e.g. ".cache/".
func ignoreEntry(root string, dir string) string {
	if filepath.IsAbs(dir) {
		if rel, err := filepath.Rel(root, dir); err == nil {
			dir = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(dir)) + "/"
}
