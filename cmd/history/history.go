package history

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devguard-io/devguard/internal/ci"
	"github.com/devguard-io/devguard/internal/storage"
	"github.com/devguard-io/devguard/pkg/shared/config"
	"github.com/devguard-io/devguard/pkg/shared/logger"
)

// RunOptionsHistory holds the arguments for the history command.
type RunOptionsHistory struct {
	UserID string
	Limit  int64
}

// Global variables for configuration and command arguments
var (
	AppConfig           *config.Config
	historyOptions      RunOptionsHistory
	exampleHistoryUsage = `  # Listing the recent scans recorded for the current user
  devguard history

  # Listing the last 25 scans recorded for a specific user
  devguard history --user-id acme --limit 25`
)

// HistoryCmd represents the history command.
var HistoryCmd = &cobra.Command{
	Use:                   "history [--user-id/-u ID] [--limit/-l N]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleHistoryUsage,
	Short:                 "Shows recent scans recorded in the history table",
	RunE:                  runHistoryCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runHistoryCommand executes the history command.
func runHistoryCommand(cmd *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-history")

	if err := validateHistoryArgs(&historyOptions, args); err != nil {
		logger.Error("invalid history arguments", "error", err)
		return err
	}

	historyStore := storage.NewHistoryStore(AppConfig, logger)
	if !historyStore.Enabled() {
		return fmt.Errorf("scan history is not configured, set storage.dynamodb_table or DEVGUARD_DYNAMODB_TABLE")
	}

	userID := ci.ResolveUserID(historyOptions.UserID)
	records, err := historyStore.UserScans(cmd.Context(), userID, historyOptions.Limit)
	if err != nil {
		logger.Error("history command failed", "error", err)
		return err
	}

	printHistory(cmd.OutOrStdout(), userID, records)
	logger.Info("history command completed successfully", "userID", userID, "scans", len(records))
	return nil
}

func init() {
	HistoryCmd.Flags().StringVarP(&historyOptions.UserID, "user-id", "u", "", "User to list scan history for (default: the CI namespace or \"local\").")
	HistoryCmd.Flags().Int64VarP(&historyOptions.Limit, "limit", "l", 10, "Maximum number of scans to list.")
	HistoryCmd.Flags().BoolP("help", "h", false, "Show help for the history command.")
}
