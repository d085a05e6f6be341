package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/devguard-io/devguard/pkg/shared/config"
)

// determineBranch returns the appropriate branch reference.
func determineBranch(branch string) plumbing.ReferenceName {
	ref := plumbing.ReferenceName(branch)
	if !ref.IsBranch() && !ref.IsRemote() && !ref.IsTag() && !ref.IsNote() {
		return plumbing.NewBranchReferenceName(branch)
	}
	return ref
}

// RepositoryPath maps a clone URL onto the projects layout,
// <projects home>/<host>/<namespace>/<repo>.
func RepositoryPath(cfg *config.Config, cloneURL string) (string, error) {
	info, err := vcsurl.Parse(cloneURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse clone URL %q: %w", cloneURL, err)
	}
	return filepath.Join(config.GetProjectsHome(cfg),
		strings.ToLower(string(info.Host)), strings.ToLower(info.FullName)), nil
}

// resolveRepositoryRoot walks up from sourceFolder until go-git can open a
// repository, so scans started from a subfolder still resolve the working
// tree they belong to.
func resolveRepositoryRoot(sourceFolder string) (string, error) {
	if sourceFolder == "" {
		return "", fmt.Errorf("source folder is not set")
	}

	dir := sourceFolder
	for {
		if _, err := git.PlainOpen(dir); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no git repository found at or above %s", sourceFolder)
		}
		dir = parent
	}
}
