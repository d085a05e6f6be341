package fetch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devguard-io/devguard/internal/git"
	"github.com/devguard-io/devguard/pkg/shared"
	"github.com/devguard-io/devguard/pkg/shared/config"
	"github.com/devguard-io/devguard/pkg/shared/logger"
)

// RunOptionsFetch holds the arguments for the fetch command.
type RunOptionsFetch struct {
	AuthType string
	SSHKey   string
	Branch   string
}

// Global variables for configuration and command arguments
var (
	AppConfig         *config.Config
	fetchOptions      RunOptionsFetch
	exampleFetchUsage = `  # Fetching the default branch of a public repository
  devguard fetch https://github.com/acme/widget

  # Fetching a specific branch using the configured HTTP token
  devguard fetch --auth-type http -b develop https://github.com/acme/widget

  # Fetching over SSH with an explicit key
  devguard fetch --auth-type ssh-key --ssh-key ~/.ssh/id_ed25519 git@github.com:acme/widget.git

  # Fetching over SSH using a running SSH agent
  devguard fetch --auth-type ssh-agent ssh://git@github.com/acme/widget.git`
)

// FetchCmd represents the fetch command.
var FetchCmd = &cobra.Command{
	Use:                   "fetch [--auth-type/-a AUTH_TYPE] [--ssh-key/-k PATH] [-b BRANCH] URL",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleFetchUsage,
	Short:                 "Fetches repository code into the local workspace for scanning",
	RunE:                  runFetchCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runFetchCommand executes the fetch command.
func runFetchCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-fetch")

	if err := validateFetchArgs(&fetchOptions, args); err != nil {
		logger.Error("invalid fetch arguments", "error", err)
		return err
	}

	cloneURL := args[0]
	if fetchOptions.SSHKey != "" {
		AppConfig.GitClient.SSHKeyPath = fetchOptions.SSHKey
	}

	client, err := git.New(AppConfig, logger, git.Params{
		CloneURL: cloneURL,
		Branch:   fetchOptions.Branch,
		AuthType: fetchOptions.AuthType,
	})
	if err != nil {
		return err
	}

	targetFolder, err := client.FetchToWorkspace(cloneURL, fetchOptions.Branch)
	if err != nil {
		logger.Error("fetch command failed", "error", err)
		return err
	}

	// the checkout path is the command output so it can feed a scan call
	fmt.Println(targetFolder)
	logger.Info("fetch command completed successfully", "targetFolder", targetFolder)
	return nil
}

func init() {
	FetchCmd.Flags().StringVarP(&fetchOptions.AuthType, "auth-type", "a", "", "Type of authentication (http, ssh-agent, ssh-key or none). Derived from the URL and config when omitted.")
	FetchCmd.Flags().StringVarP(&fetchOptions.SSHKey, "ssh-key", "k", "", "Path to an SSH key.")
	FetchCmd.Flags().StringVarP(&fetchOptions.Branch, "branch", "b", "", "Specific branch to fetch (default: the remote default branch).")
	FetchCmd.Flags().BoolP("help", "h", false, "Show help for the fetch command.")
}
