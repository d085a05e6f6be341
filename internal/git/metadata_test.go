package git

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

func TestCollectRepositoryMetadata(t *testing.T) {
	repoDir := t.TempDir()
	repo, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://github.com/acme/widget.git"},
	}); err != nil {
		t.Fatalf("CreateRemote: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	hash := commitFile(t, wt, "svc/app.py", "x = 1\n", "initial commit")

	md, err := CollectRepositoryMetadata(filepath.Join(repoDir, "svc"))
	if err != nil {
		t.Fatalf("CollectRepositoryMetadata returned error: %v", err)
	}

	if md.RepositoryFullName != "acme/widget" {
		t.Fatalf("unexpected repository name: %q", md.RepositoryFullName)
	}
	if md.BranchName != "master" {
		t.Fatalf("unexpected branch: %q", md.BranchName)
	}
	if md.CommitHash != hash.String() {
		t.Fatalf("unexpected commit: %q", md.CommitHash)
	}
	if md.Subfolder != "svc" {
		t.Fatalf("unexpected subfolder: %q", md.Subfolder)
	}
	if md.RepoRootFolder != repoDir {
		t.Fatalf("unexpected repo root: %q", md.RepoRootFolder)
	}
}

func TestCollectRepositoryMetadataOutsideRepo(t *testing.T) {
	if _, err := CollectRepositoryMetadata(t.TempDir()); err == nil {
		t.Fatal("expected error outside any repository")
	}
	if _, err := CollectRepositoryMetadata(""); err == nil {
		t.Fatal("expected error for empty source folder")
	}
}

func TestRepositoryMetadataLabels(t *testing.T) {
	var missing *RepositoryMetadata
	if got := missing.Labels(); len(got) != 0 {
		t.Fatalf("expected no labels for nil metadata, got %v", got)
	}

	md := &RepositoryMetadata{
		RepositoryFullName: "acme/widget",
		BranchName:         "main",
		CommitHash:         "abc123",
	}
	labels := md.Labels()
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %v", labels)
	}
	if labels["repository"] != "acme/widget" {
		t.Fatalf("unexpected repository label: %q", labels["repository"])
	}
	if labels["branch"] != "main" || labels["commit"] != "abc123" {
		t.Fatalf("unexpected labels: %v", labels)
	}
	if _, ok := labels["subfolder"]; ok {
		t.Fatal("subfolder label should be omitted when empty")
	}
}

func TestRepositoryFullName(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/widget.git", "acme/widget"},
		{"git@gitlab.com:acme/widget.git", "acme/widget"},
		{"https://git.internal.corp/team/repo.git", "team/repo"},
	}
	for _, tc := range cases {
		if got := repositoryFullName(tc.url); got != tc.want {
			t.Fatalf("repositoryFullName(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
