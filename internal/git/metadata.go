package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
)

// RepositoryMetadata describes the checked out repository a scan ran
// against. Empty fields mean the information could not be resolved.
type RepositoryMetadata struct {
	RepositoryFullName string
	BranchName         string
	CommitHash         string
	Subfolder          string
	RepoRootFolder     string
}

// Labels flattens the metadata into the key/value form attached to stored
// scan history entries.
func (m *RepositoryMetadata) Labels() map[string]string {
	labels := map[string]string{}
	if m == nil {
		return labels
	}
	if m.RepositoryFullName != "" {
		labels["repository"] = m.RepositoryFullName
	}
	if m.BranchName != "" {
		labels["branch"] = m.BranchName
	}
	if m.CommitHash != "" {
		labels["commit"] = m.CommitHash
	}
	if m.Subfolder != "" {
		labels["subfolder"] = m.Subfolder
	}
	return labels
}

// CollectRepositoryMetadata resolves branch, commit and remote information
// for the repository containing sourceFolder. The folder may point at any
// subfolder of a working tree.
func CollectRepositoryMetadata(sourceFolder string) (*RepositoryMetadata, error) {
	if sourceFolder == "" {
		return &RepositoryMetadata{}, fmt.Errorf("source folder is not set")
	}

	if absSource, err := filepath.Abs(sourceFolder); err == nil {
		sourceFolder = absSource
	}

	md := &RepositoryMetadata{
		RepoRootFolder: filepath.Clean(sourceFolder),
	}

	repoRootFolder, err := resolveRepositoryRoot(sourceFolder)
	if err != nil {
		return md, err
	}

	md.RepoRootFolder = filepath.Clean(repoRootFolder)

	repo, err := git.PlainOpen(repoRootFolder)
	if err != nil {
		return md, fmt.Errorf("failed to open repository: %w", err)
	}

	if rel, err := filepath.Rel(repoRootFolder, sourceFolder); err == nil && rel != "." {
		md.Subfolder = filepath.ToSlash(rel)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			md.BranchName = head.Name().Short()
		}
		md.CommitHash = head.Hash().String()
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			md.RepositoryFullName = repositoryFullName(cfg.URLs[0])
		}
	}

	return md, nil
}

// repositoryFullName normalizes a remote URL into the "namespace/name" form
// used in report headers. URLs the parser does not recognize are kept as-is
// without the ".git" suffix.
func repositoryFullName(remoteURL string) string {
	if info, err := vcsurl.Parse(remoteURL); err == nil && info.FullName != "" {
		return info.FullName
	}
	return strings.TrimSuffix(remoteURL, ".git")
}
