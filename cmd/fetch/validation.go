package fetch

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/devguard-io/devguard/pkg/shared"
	"github.com/devguard-io/devguard/pkg/shared/files"
)

const (
	AuthTypeHTTP     = "http"
	AuthTypeSSHKey   = "ssh-key"
	AuthTypeSSHAgent = "ssh-agent"
	AuthTypeNone     = "none"
)

// validateFetchArgs validates the arguments provided to the fetch command.
func validateFetchArgs(options *RunOptionsFetch, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("a repository URL must be specified")
	}
	if len(args) > 1 {
		return fmt.Errorf("invalid argument(s) received, only one positional argument is allowed")
	}

	if options.AuthType != "" {
		authTypesList := []string{AuthTypeHTTP, AuthTypeSSHKey, AuthTypeSSHAgent, AuthTypeNone}
		if !shared.IsInList(options.AuthType, authTypesList) {
			return fmt.Errorf("unknown auth-type: %v", options.AuthType)
		}
	}

	if options.AuthType == AuthTypeSSHKey && options.SSHKey == "" {
		return fmt.Errorf("you must specify ssh-key with auth-type 'ssh-key'")
	}

	if options.SSHKey != "" {
		if err := validateSSHKey(options.SSHKey); err != nil {
			return err
		}
	}

	return validateCloneURL(args[0])
}

// validateSSHKey checks that the key file exists and parses as a private key.
// A passphrase protected key passes, the passphrase is read from the
// environment at clone time.
func validateSSHKey(path string) error {
	expandedPath, err := files.ExpandPath(path)
	if err != nil {
		return fmt.Errorf("failed to expand path %q: %w", path, err)
	}

	if err := files.ValidatePath(expandedPath); err != nil {
		return fmt.Errorf("failed to validate path %q: %w", expandedPath, err)
	}

	keyData, err := os.ReadFile(expandedPath)
	if err != nil {
		return fmt.Errorf("failed to read SSH key file: %w", err)
	}

	if _, err := ssh.ParsePrivateKey(keyData); err != nil {
		if _, ok := err.(*ssh.PassphraseMissingError); !ok {
			return fmt.Errorf("invalid SSH key format: %w", err)
		}
	}
	return nil
}

// validateCloneURL accepts http(s), ssh and scp-style git URLs.
func validateCloneURL(cloneURL string) error {
	if strings.HasPrefix(cloneURL, "git@") {
		return nil
	}
	if _, err := url.ParseRequestURI(cloneURL); err != nil {
		return fmt.Errorf("provided URL is not valid: %w", err)
	}
	return nil
}
