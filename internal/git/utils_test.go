package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devguard-io/devguard/pkg/shared/config"
)

func TestDetermineBranch(t *testing.T) {
	tests := []struct {
		name   string
		branch string
		want   string
	}{
		{"short name", "main", "refs/heads/main"},
		{"nested short name", "feature/login", "refs/heads/feature/login"},
		{"full branch ref", "refs/heads/develop", "refs/heads/develop"},
		{"tag ref", "refs/tags/v1.2.0", "refs/tags/v1.2.0"},
		{"remote ref", "refs/remotes/origin/main", "refs/remotes/origin/main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineBranch(tt.branch); string(got) != tt.want {
				t.Fatalf("determineBranch(%q) = %q, want %q", tt.branch, got, tt.want)
			}
		})
	}
}

func TestRepositoryPath(t *testing.T) {
	cfg := &config.Config{}
	cfg.Devguard.ProjectsFolder = filepath.Join("home", "projects")

	tests := []struct {
		name     string
		cloneURL string
		want     string
	}{
		{"https url", "https://github.com/DevGuard-IO/Sample", filepath.Join("home", "projects", "github.com", "devguard-io", "sample")},
		{"ssh url", "git@gitlab.com:Acme/Widget.git", filepath.Join("home", "projects", "gitlab.com", "acme", "widget")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RepositoryPath(cfg, tt.cloneURL)
			if err != nil {
				t.Fatalf("RepositoryPath returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("RepositoryPath(%q) = %q, want %q", tt.cloneURL, got, tt.want)
			}
		})
	}
}

func TestRepositoryPathUnparsableURL(t *testing.T) {
	if _, err := RepositoryPath(&config.Config{}, "not a clone url"); err == nil {
		t.Fatal("expected error for unparsable clone URL")
	}
}

func TestResolveRepositoryRoot(t *testing.T) {
	repoDir, _ := setupSourceRepo(t)
	sub := filepath.Join(repoDir, "nested", "deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := resolveRepositoryRoot(sub)
	if err != nil {
		t.Fatalf("resolveRepositoryRoot returned error: %v", err)
	}
	if got != repoDir {
		t.Fatalf("expected repo root %q, got %q", repoDir, got)
	}
}

func TestResolveRepositoryRootOutsideRepo(t *testing.T) {
	if _, err := resolveRepositoryRoot(t.TempDir()); err == nil {
		t.Fatal("expected error for folder outside any repository")
	}
	if _, err := resolveRepositoryRoot(""); err == nil {
		t.Fatal("expected error for empty folder")
	}
}
