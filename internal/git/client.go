package git

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	crssh "golang.org/x/crypto/ssh"

	"github.com/hashicorp/go-hclog"

	"github.com/devguard-io/devguard/pkg/shared/config"
	"github.com/devguard-io/devguard/pkg/shared/files"
)

// Client fetches repositories into the local workspace so they can be
// scanned like any other directory target.
type Client struct {
	logger       hclog.Logger
	auth         transport.AuthMethod
	timeout      time.Duration
	globalConfig *config.Config
}

// Params carries the per-fetch settings that do not come from the global
// configuration.
type Params struct {
	CloneURL string
	Branch   string
	AuthType string // http, ssh-key, ssh-agent or none; empty derives it from the URL
}

// Authenticator defines an interface for the supported authentication methods.
type Authenticator interface {
	SetupAuth(cfg *config.Config, logger hclog.Logger) (transport.AuthMethod, error)
	ValidateConfig(cfg *config.Config) error
}

// SSHKeyAuthenticator provides SSH key-based authentication.
type SSHKeyAuthenticator struct{}

// SSHAgentAuthenticator provides SSH agent-based authentication.
type SSHAgentAuthenticator struct{}

// HTTPAuthenticator provides HTTP token authentication.
type HTTPAuthenticator struct{}

// AnonymousAuthenticator performs unauthenticated clones of public repositories.
type AnonymousAuthenticator struct{}

// SetupAuth configures SSH key authentication.
func (s *SSHKeyAuthenticator) SetupAuth(cfg *config.Config, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up SSH key authentication")

	sshKeyPath, err := files.ExpandPath(cfg.GitClient.SSHKeyPath)
	if err != nil {
		logger.Error("failed to expand SSH key path", "path", cfg.GitClient.SSHKeyPath, "error", err)
		return nil, err
	}

	auth, err := ssh.NewPublicKeysFromFile("git", sshKeyPath, os.Getenv("DEVGUARD_SSH_KEY_PASSWORD"))
	if err != nil {
		logger.Error("failed to set up SSH key authentication", "error", err.Error())
		return nil, err
	}

	auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
		HostKeyCallback: crssh.InsecureIgnoreHostKey(), // TODO: Fix this
	}

	return auth, nil
}

// ValidateConfig validates the configuration for SSHKeyAuthenticator.
func (s *SSHKeyAuthenticator) ValidateConfig(cfg *config.Config) error {
	if cfg.GitClient.SSHKeyPath == "" {
		return fmt.Errorf("git_client.ssh_key_path is required for SSH key authentication")
	}
	return nil
}

// SetupAuth configures SSH agent authentication.
func (s *SSHAgentAuthenticator) SetupAuth(cfg *config.Config, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up SSH agent authentication")

	auth, err := ssh.NewSSHAgentAuth("git")
	if err != nil {
		logger.Error("failed to set up SSH agent authentication", "error", err)
		return nil, err
	}

	auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
		HostKeyCallback: crssh.InsecureIgnoreHostKey(), // TODO: Fix this
	}

	return auth, nil
}

// ValidateConfig validates the configuration for SSHAgentAuthenticator.
func (s *SSHAgentAuthenticator) ValidateConfig(cfg *config.Config) error {
	return nil
}

// SetupAuth configures HTTP token authentication.
func (h *HTTPAuthenticator) SetupAuth(cfg *config.Config, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up HTTP authentication")

	return &http.BasicAuth{
		Username: "git",
		Password: cfg.GitClient.Token,
	}, nil
}

// ValidateConfig validates the configuration for HTTPAuthenticator.
func (h *HTTPAuthenticator) ValidateConfig(cfg *config.Config) error {
	if cfg.GitClient.Token == "" {
		return fmt.Errorf("git_client.token is required for HTTP authentication")
	}
	return nil
}

// SetupAuth leaves the transport unauthenticated.
func (a *AnonymousAuthenticator) SetupAuth(cfg *config.Config, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("cloning without authentication")
	return nil, nil
}

// ValidateConfig validates the configuration for AnonymousAuthenticator.
func (a *AnonymousAuthenticator) ValidateConfig(cfg *config.Config) error {
	return nil
}

// getAuthenticator returns the appropriate Authenticator based on the authentication type.
func getAuthenticator(authType string) (Authenticator, error) {
	switch authType {
	case "ssh-key":
		return &SSHKeyAuthenticator{}, nil
	case "ssh-agent":
		return &SSHAgentAuthenticator{}, nil
	case "http":
		return &HTTPAuthenticator{}, nil
	case "none":
		return &AnonymousAuthenticator{}, nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", authType)
	}
}

// determineAuthType picks an authentication method for a clone URL when
// none was requested explicitly.
func determineAuthType(cloneURL string, cfg *config.Config) string {
	if strings.HasPrefix(cloneURL, "git@") || strings.HasPrefix(cloneURL, "ssh://") {
		if cfg.GitClient.SSHKeyPath != "" {
			return "ssh-key"
		}
		return "ssh-agent"
	}
	if cfg.GitClient.Token != "" {
		return "http"
	}
	return "none"
}

// New initializes a new Git Client with the given parameters.
func New(globalConfig *config.Config, logger hclog.Logger, params Params) (*Client, error) {
	authType := params.AuthType
	if authType == "" {
		authType = determineAuthType(params.CloneURL, globalConfig)
	}

	authenticator, err := getAuthenticator(authType)
	if err != nil {
		logger.Error("unsupported authentication type", "error", err)
		return nil, fmt.Errorf("unsupported authentication type: %w", err)
	}

	if err := authenticator.ValidateConfig(globalConfig); err != nil {
		logger.Error("invalid configuration", "error", err)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	auth, err := authenticator.SetupAuth(globalConfig, logger)
	if err != nil {
		logger.Error("failed to set up Git authentication", "error", err)
		return nil, fmt.Errorf("failed to set up Git authentication: %w", err)
	}

	timeout := config.SetThen(globalConfig.GitClient.Timeout.Std(), 10*time.Minute)

	return &Client{
		logger:       logger,
		auth:         auth,
		timeout:      timeout,
		globalConfig: globalConfig,
	}, nil
}
