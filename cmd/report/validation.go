package report

import (
	"fmt"

	"github.com/devguard-io/devguard/pkg/shared"
	"github.com/devguard-io/devguard/pkg/shared/files"
)

// validateReportArgs validates the arguments provided to the report command.
func validateReportArgs(options *RunOptionsReport, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("a report artifact path must be specified")
	}
	if len(args) > 1 {
		return fmt.Errorf("invalid argument(s) received, only one positional argument is allowed")
	}

	if err := files.ValidatePath(args[0]); err != nil {
		return fmt.Errorf("invalid report artifact: %w", err)
	}

	if !shared.IsInList(options.ReportFormat, Formats) {
		return fmt.Errorf("unknown format: %v", options.ReportFormat)
	}
	return nil
}
