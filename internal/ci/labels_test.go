package ci

import (
	"reflect"
	"testing"
)

func TestEnvironmentLabels(t *testing.T) {
	env := Environment{
		Provider:           ProviderGitHub,
		CommitHash:         "abcdef123456",
		ReferenceName:      "main",
		RepositoryFullName: "octocat/hello-world",
		Namespace:          "octocat",
	}

	want := map[string]string{
		"ci_provider": "github",
		"repository":  "octocat/hello-world",
		"branch":      "main",
		"commit":      "abcdef123456",
	}

	if got := env.Labels(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Labels() = %v, want %v", got, want)
	}
}

func TestEnvironmentLabelsSparse(t *testing.T) {
	env := Environment{Provider: ProviderGitLab, RepositoryFullName: "group/demo"}

	want := map[string]string{
		"ci_provider": "gitlab",
		"repository":  "group/demo",
	}

	if got := env.Labels(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Labels() = %v, want %v", got, want)
	}
}

func TestDefaultUserID(t *testing.T) {
	testCases := []struct {
		name string
		env  Environment
		want string
	}{
		{
			name: "Namespace",
			env:  Environment{Namespace: "octocat", RepositoryFullName: "octocat/hello-world"},
			want: "octocat",
		},
		{
			name: "FallbackToFullName",
			env:  Environment{RepositoryFullName: "workspace/repo"},
			want: "workspace/repo",
		},
		{
			name: "Empty",
			env:  Environment{},
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.env.DefaultUserID(); got != tc.want {
				t.Fatalf("DefaultUserID() = %q, want %q", got, tc.want)
			}
		})
	}
}

// clearCIEnv blanks every variable the provider detection looks at so tests
// behave the same inside and outside CI runners.
func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GITHUB_REPOSITORY", "GITHUB_SHA",
		"GITLAB_CI", "CI_PROJECT_PATH",
		"BITBUCKET_WORKSPACE", "BITBUCKET_REPO_SLUG",
	} {
		t.Setenv(name, "")
	}
}

func TestResolveUserID(t *testing.T) {
	clearCIEnv(t)

	if got := ResolveUserID("alice"); got != "alice" {
		t.Fatalf("explicit ID should win, got %q", got)
	}
	if got := ResolveUserID(""); got != "local" {
		t.Fatalf("expected local fallback outside CI, got %q", got)
	}

	t.Setenv("GITHUB_REPOSITORY", "octocat/hello-world")
	t.Setenv("GITHUB_REPOSITORY_OWNER", "octocat")
	if got := ResolveUserID(""); got != "octocat" {
		t.Fatalf("expected CI namespace, got %q", got)
	}
	if got := ResolveUserID("alice"); got != "alice" {
		t.Fatalf("explicit ID should win over CI namespace, got %q", got)
	}
}
