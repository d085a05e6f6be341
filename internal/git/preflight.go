package git

import (
	"context"
	"fmt"

	"github.com/gitsight/go-vcsurl"
	"github.com/google/go-github/v47/github"
	"github.com/xanzy/go-gitlab"
	"golang.org/x/oauth2"
)

// PreflightSize asks the hosting provider how large the repository is, in
// bytes, before anything is cloned. Hosts without a supported metadata API
// report zero with no error.
func (c *Client) PreflightSize(cloneURL string) (int64, error) {
	info, err := vcsurl.Parse(cloneURL)
	if err != nil {
		return 0, fmt.Errorf("failed to parse clone URL %q: %w", cloneURL, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	switch info.Host {
	case vcsurl.GitHub:
		return c.githubRepoSize(ctx, info.Username, info.Name)
	case vcsurl.GitLab:
		return c.gitlabRepoSize(ctx, info.FullName)
	default:
		c.logger.Debug("no size metadata API for host, skipping preflight", "host", info.Host)
		return 0, nil
	}
}

func (c *Client) githubRepoSize(ctx context.Context, owner, name string) (int64, error) {
	var client *github.Client
	if token := c.globalConfig.GitClient.Token; token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(ctx, ts))
	} else {
		client = github.NewClient(nil)
	}

	repo, _, err := client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch repository metadata from GitHub: %w", err)
	}
	// the API reports size in kilobytes
	return int64(repo.GetSize()) * 1024, nil
}

func (c *Client) gitlabRepoSize(ctx context.Context, fullName string) (int64, error) {
	client, err := gitlab.NewClient(c.globalConfig.GitClient.Token)
	if err != nil {
		return 0, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	project, _, err := client.Projects.GetProject(fullName,
		&gitlab.GetProjectOptions{Statistics: gitlab.Bool(true)}, gitlab.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch project metadata from GitLab: %w", err)
	}
	if project.Statistics == nil {
		return 0, nil
	}
	return project.Statistics.RepositorySize, nil
}
