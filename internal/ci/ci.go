// Package ci discovers the CI context a scan runs in so reports can carry
// repository coordinates even when no local git checkout is available.
package ci

import (
	"net/url"
	"os"
	"strings"
)

// Provider identifies a supported CI system.
type Provider int

const (
	// ProviderUnknown indicates the CI provider could not be identified.
	ProviderUnknown Provider = iota
	// ProviderGitHub identifies GitHub Actions environments.
	ProviderGitHub
	// ProviderGitLab identifies GitLab CI environments.
	ProviderGitLab
	// ProviderBitbucket identifies Bitbucket Pipelines environments.
	ProviderBitbucket
)

// LookupFunc fetches environment variables and defaults to os.Getenv.
type LookupFunc func(string) string

// Environment captures the repository coordinates a CI provider exposes to
// its jobs.
type Environment struct {
	Provider           Provider
	CommitHash         string // CommitHash is the tip commit that triggered the job.
	ServerURL          string // ServerURL is the scheme and host of the VCS server.
	Reference          string // Reference is the fully qualified git reference (e.g. refs/heads/main).
	ReferenceName      string // ReferenceName is the short reference or branch name.
	RepositoryName     string // RepositoryName is the repository slug without namespace.
	RepositoryFullName string // RepositoryFullName is the namespace-qualified repository name.
	RepositoryURL      string // RepositoryURL is the full web URL for the repository.
	Namespace          string // Namespace is the owner or project namespace.
}

// String returns the human-readable string representation of a Provider.
func (p Provider) String() string {
	switch p {
	case ProviderGitHub:
		return "github"
	case ProviderGitLab:
		return "gitlab"
	case ProviderBitbucket:
		return "bitbucket"
	default:
		return "unknown"
	}
}

// Detect attempts to infer the CI provider from well-known environment variables.
func Detect() Provider {
	return detectWithLookup(os.Getenv)
}

func detectWithLookup(lookup LookupFunc) Provider {
	if lookup == nil {
		lookup = os.Getenv
	}

	if lookup("GITHUB_REPOSITORY") != "" || lookup("GITHUB_SHA") != "" {
		return ProviderGitHub
	}
	if strings.EqualFold(lookup("GITLAB_CI"), "true") || lookup("CI_PROJECT_PATH") != "" {
		return ProviderGitLab
	}
	if lookup("BITBUCKET_WORKSPACE") != "" || lookup("BITBUCKET_REPO_SLUG") != "" {
		return ProviderBitbucket
	}

	return ProviderUnknown
}

// Current inspects the process environment and returns the CI context the
// process runs in. The second return is false outside of a recognized CI
// provider.
func Current() (Environment, bool) {
	return currentWithLookup(os.Getenv)
}

func currentWithLookup(lookup LookupFunc) (Environment, bool) {
	if lookup == nil {
		lookup = os.Getenv
	}

	switch detectWithLookup(lookup) {
	case ProviderGitHub:
		return githubEnvironment(lookup), true
	case ProviderGitLab:
		return gitlabEnvironment(lookup), true
	case ProviderBitbucket:
		return bitbucketEnvironment(lookup), true
	default:
		return Environment{}, false
	}
}

// githubEnvironment maps the GitHub Actions variables documented at
// https://docs.github.com/en/actions/reference/workflows-and-actions/variables.
func githubEnvironment(lookup LookupFunc) Environment {
	fullName := lookup("GITHUB_REPOSITORY")
	repoName := ""
	if i := strings.LastIndex(fullName, "/"); i >= 0 && i < len(fullName)-1 {
		repoName = fullName[i+1:]
	}

	serverURL := lookup("GITHUB_SERVER_URL")
	repoURL := ""
	if serverURL != "" && fullName != "" {
		repoURL = serverURL + "/" + fullName
	}

	return Environment{
		Provider:           ProviderGitHub,
		CommitHash:         lookup("GITHUB_SHA"),
		ServerURL:          serverURL,
		Reference:          lookup("GITHUB_REF"),
		ReferenceName:      lookup("GITHUB_REF_NAME"),
		RepositoryName:     repoName,
		RepositoryFullName: fullName,
		RepositoryURL:      repoURL,
		Namespace:          lookup("GITHUB_REPOSITORY_OWNER"),
	}
}

// gitlabEnvironment maps the predefined GitLab CI variables documented at
// https://docs.gitlab.com/ci/variables/predefined_variables/.
func gitlabEnvironment(lookup LookupFunc) Environment {
	var fullRef, refName string
	if tag := lookup("CI_COMMIT_TAG"); tag != "" {
		// Tag pipeline.
		fullRef = "refs/tags/" + tag
		refName = tag
	} else if mrRef := lookup("CI_MERGE_REQUEST_REF_PATH"); mrRef != "" {
		// Merge request pipeline (e.g. refs/merge-requests/42/head). The source
		// branch name labels the report better than the MR number does.
		fullRef = mrRef
		refName = lookup("CI_MERGE_REQUEST_SOURCE_BRANCH_NAME")
	} else {
		refName = lookup("CI_COMMIT_REF_NAME")
		if refName != "" {
			fullRef = "refs/heads/" + refName
		}
	}

	return Environment{
		Provider:           ProviderGitLab,
		CommitHash:         lookup("CI_COMMIT_SHA"),
		ServerURL:          lookup("CI_SERVER_URL"),
		Reference:          fullRef,
		ReferenceName:      refName,
		RepositoryName:     lookup("CI_PROJECT_NAME"),
		RepositoryFullName: lookup("CI_PROJECT_PATH"),
		RepositoryURL:      lookup("CI_PROJECT_URL"),
		Namespace:          lookup("CI_PROJECT_NAMESPACE"),
	}
}

// bitbucketEnvironment maps the Bitbucket Pipelines variables documented at
// https://support.atlassian.com/bitbucket-cloud/docs/variables-and-secrets/.
func bitbucketEnvironment(lookup LookupFunc) Environment {
	var reference, refName string
	if tag := lookup("BITBUCKET_TAG"); tag != "" {
		reference = "refs/tags/" + tag
		refName = tag
	} else if branch := lookup("BITBUCKET_BRANCH"); branch != "" {
		reference = "refs/heads/" + branch
		refName = branch
	} else if pr := lookup("BITBUCKET_PR_ID"); pr != "" {
		reference = "refs/pull/" + pr
		refName = pr
	}

	origin := lookup("BITBUCKET_GIT_HTTP_ORIGIN")
	var serverURL string
	if u, err := url.Parse(origin); err == nil && u.Scheme != "" && u.Host != "" {
		serverURL = u.Scheme + "://" + u.Host
	}

	return Environment{
		Provider:           ProviderBitbucket,
		CommitHash:         lookup("BITBUCKET_COMMIT"),
		ServerURL:          serverURL,
		Reference:          reference,
		ReferenceName:      refName,
		RepositoryName:     lookup("BITBUCKET_REPO_SLUG"),
		RepositoryFullName: lookup("BITBUCKET_REPO_FULL_NAME"),
		RepositoryURL:      origin,
		Namespace:          lookup("BITBUCKET_WORKSPACE"),
	}
}
