package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gitconfig "github.com/go-git/go-git/v5/config"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/hashicorp/go-hclog"

	"github.com/devguard-io/devguard/internal/workset"
	"github.com/devguard-io/devguard/pkg/shared/config"
	"github.com/devguard-io/devguard/pkg/shared/files"

	log "github.com/devguard-io/devguard/pkg/shared/logger"
)

// FetchToWorkspace clones the repository into the projects layout after
// asking the hosting provider for its size, and verifies the on-disk size
// once the clone finishes. It returns the checked out folder.
func (c *Client) FetchToWorkspace(cloneURL, branch string) (string, error) {
	targetFolder, err := RepositoryPath(c.globalConfig, cloneURL)
	if err != nil {
		return "", err
	}

	limit := config.SetThen(c.globalConfig.Scan.MaxTargetSize, workset.DefaultMaxTargetSize)
	if size, err := c.PreflightSize(cloneURL); err != nil {
		c.logger.Warn("could not determine remote repository size, continuing", "cloneURL", cloneURL, "error", err)
	} else if size > limit {
		// provider size covers full history, a shallow clone may still fit
		c.logger.Warn("remote repository reports a size over the limit",
			"cloneURL", cloneURL, "size", workset.FormatSize(size), "limit", workset.FormatSize(limit))
	}

	if err := files.CreateFolderIfNotExists(filepath.Dir(targetFolder)); err != nil {
		return "", fmt.Errorf("failed to create projects folder: %w", err)
	}
	if _, err := c.CloneRepository(cloneURL, branch, targetFolder); err != nil {
		return "", err
	}

	if size := workset.DirectorySize(targetFolder); size > limit {
		if err := os.RemoveAll(targetFolder); err != nil {
			c.logger.Error("failed to remove oversized repository", "targetFolder", targetFolder, "error", err)
		}
		return "", &RepositoryTooLargeError{URL: cloneURL, Size: size, Limit: limit}
	}

	return targetFolder, nil
}

// CloneRepository clones cloneURL into targetFolder, updating in place when
// the repository already exists there. An empty branch stays on the remote
// default branch.
func (c *Client) CloneRepository(cloneURL, branch, targetFolder string) (string, error) {
	if cloneURL == "" {
		return "", ErrNoCloneURL
	}

	repoName := cloneURL
	if info, err := vcsurl.Parse(cloneURL); err == nil {
		repoName = info.Name
	}

	output := log.GetLoggerOutput(c.logger)
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	cloneOptions := &git.CloneOptions{
		Auth:     c.auth,
		URL:      cloneURL,
		Progress: output,
		Depth:    config.SetThen(c.globalConfig.GitClient.Depth, 1),
	}
	var reference plumbing.ReferenceName
	if branch != "" {
		reference = determineBranch(branch)
		cloneOptions.ReferenceName = reference
	}

	c.logger.Debug("starting repository fetch", "repository", repoName, "branch", branch, "targetFolder", targetFolder)
	existed := false
	repo, err := git.PlainCloneContext(ctx, targetFolder, false, cloneOptions)
	if err != nil {
		if err != git.ErrRepositoryAlreadyExists {
			c.logger.Error("error occurred during clone", "error", err, "targetFolder", targetFolder)
			return "", fmt.Errorf("error occurred during clone: %w", err)
		}

		existed = true
		c.logger.Info("repository already exists, updating...", "targetFolder", targetFolder)
		repo, err = git.PlainOpen(targetFolder)
		if err != nil {
			c.logger.Error("cannot open existing repository", "error", err, "targetFolder", targetFolder)
			return "", fmt.Errorf("cannot open existing repository: %w", err)
		}

		if err := c.updateRepository(ctx, repo, output, cloneURL, targetFolder, reference); err != nil {
			return "", err
		}
	}

	if branch != "" {
		if err := checkoutAndResetBranch(repo, reference, c.logger, targetFolder); err != nil {
			return "", err
		}
	}
	if existed {
		if err := c.pullLatestChanges(ctx, repo, reference, output); err != nil {
			return "", err
		}
	}

	c.logger.Info("repository operation completed successfully", "repository", repoName, "branch", branch, "targetFolder", targetFolder)
	return targetFolder, nil
}

// updateRepository fetches updates from the remote repository and handles errors.
func (c *Client) updateRepository(ctx context.Context, repo *git.Repository, output io.Writer, cloneURL, targetFolder string, reference plumbing.ReferenceName) error {
	c.logger.Debug("update repo by using fetch", "targetFolder", targetFolder)
	fetchOptions := &git.FetchOptions{
		RemoteName: "origin",
		Auth:       c.auth,
		Progress:   output,
		RefSpecs:   []gitconfig.RefSpec{"+refs/*:refs/*"},
		Depth:      config.SetThen(c.globalConfig.GitClient.Depth, 1),
	}

	err := repo.FetchContext(ctx, fetchOptions)
	switch {
	case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate):
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			c.logger.Info("repository already up-to-date", "targetFolder", targetFolder)
		}
		return nil
	case err.Error() == "object not found" || err.Error() == "reference not found":
		// the local copy no longer matches the remote, start over with an
		// empty folder
		c.logger.Error("object/reference not found in the repository, recloning", "targetFolder", targetFolder, "error", err)
		if err := files.RemoveAndRecreate(targetFolder); err != nil {
			c.logger.Error("failed to reset repository folder", "error", err)
			return fmt.Errorf("failed to reset repository folder: %w", err)
		}

		_, err := git.PlainCloneContext(ctx, targetFolder, false, &git.CloneOptions{
			Auth:          c.auth,
			URL:           cloneURL,
			ReferenceName: reference,
			Progress:      output,
			Depth:         fetchOptions.Depth,
		})
		if err != nil {
			c.logger.Error("retrying clone failed", "error", err)
			return fmt.Errorf("retrying clone failed: %w", err)
		}
		return nil
	default:
		c.logger.Error("error occurred during fetch", "error", err, "targetFolder", targetFolder)
		return fmt.Errorf("error occurred during fetch: %w", err)
	}
}

// checkoutAndResetBranch checks out and resets the branch.
func checkoutAndResetBranch(repo *git.Repository, branch plumbing.ReferenceName, logger hclog.Logger, targetFolder string) error {
	w, err := repo.Worktree()
	if err != nil {
		logger.Error("error accessing worktree", "error", err, "targetFolder", targetFolder)
		return fmt.Errorf("error accessing worktree: %w", err)
	}

	logger.Debug("checking out branch", "branch", branch, "targetFolder", targetFolder)
	if err := w.Checkout(&git.CheckoutOptions{
		Branch: branch,
		Force:  true,
	}); err != nil {
		logger.Error("error occurred during checkout", "error", err, "targetFolder", targetFolder)
		return fmt.Errorf("error occurred during checkout: %w", err)
	}

	logger.Debug("resetting local repository", "targetFolder", targetFolder)
	if err := w.Reset(&git.ResetOptions{
		Mode: git.HardReset,
	}); err != nil {
		logger.Error("error occurred during reset", "error", err, "targetFolder", targetFolder)
		return fmt.Errorf("error occurred during reset: %w", err)
	}
	return nil
}

func (c *Client) pullLatestChanges(ctx context.Context, repo *git.Repository, branch plumbing.ReferenceName, output io.Writer) error {
	w, err := repo.Worktree()
	if err != nil {
		c.logger.Error("error accessing worktree", "error", err)
		return fmt.Errorf("error accessing worktree: %w", err)
	}

	c.logger.Debug("attempting to pull the latest changes", "branch", branch)
	err = w.PullContext(ctx, &git.PullOptions{
		Auth:          c.auth,
		ReferenceName: branch,
		Progress:      output,
		Force:         true,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		c.logger.Error("error occurred during pull", "error", err)
		return fmt.Errorf("error occurred during pull: %w", err)
	}
	return nil
}
