package config

import (
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"github.com/RobLoach/duo/internal/errors"
)

// rootMarkers identify a duo project directory, checked in order at each
// level while walking up from the working directory.
var rootMarkers = []string{"component.json", ManifestName, "package.json"}

// ResolveRoot determines the project root. An explicit path wins; otherwise
// the nearest ancestor carrying a project marker, then the enclosing git
// worktree, then the working directory itself.
func ResolveRoot(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", errors.ConfigError("invalid root: " + explicit)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return "", errors.ConfigError("root is not a directory: " + explicit)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryConfig, errors.SeverityError, "cannot determine working directory")
	}

	if root, ok := findMarkerRoot(cwd); ok {
		return root, nil
	}
	if root, ok := gitWorktreeRoot(cwd); ok {
		return root, nil
	}
	return cwd, nil
}

// findMarkerRoot walks from dir to the filesystem root looking for a
// project marker file.
func findMarkerRoot(dir string) (string, bool) {
	for {
		for _, marker := range rootMarkers {
			if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && !info.IsDir() {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// gitWorktreeRoot finds the enclosing git worktree, if any. Bare
// repositories have no worktree and are skipped.
func gitWorktreeRoot(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", false
	}
	return wt.Filesystem.Root(), true
}
