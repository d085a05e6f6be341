package scan

import (
	"fmt"
	"os"

	"github.com/devguard-io/devguard/cmd/report"
	"github.com/devguard-io/devguard/pkg/shared"
	"github.com/devguard-io/devguard/pkg/shared/files"
)

// Mode constants
const (
	ModeSinglePath = "single-path"
	ModeInputFile  = "input-file"
)

// determineMode determines the mode based on the provided arguments.
func determineMode(args []string) string {
	if len(args) > 0 {
		return ModeSinglePath
	}
	return ModeInputFile
}

// validateScanArgs validates the arguments provided to the scan command.
func validateScanArgs(options *RunOptionsScan, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("invalid argument(s) received, only one positional argument is allowed")
	}
	if len(args) == 0 && options.InputFile == "" {
		return fmt.Errorf("either 'input-file' flag or a target path must be specified")
	}
	if options.InputFile != "" && len(args) != 0 {
		return fmt.Errorf("you cannot use an 'input-file' flag and a target path at the same time")
	}

	if len(args) == 1 {
		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("the target path does not exist: %s", args[0])
		}
	}
	if options.InputFile != "" {
		if err := files.ValidatePath(options.InputFile); err != nil {
			return fmt.Errorf("invalid input file: %w", err)
		}
	}

	if !shared.IsInList(options.ReportFormat, report.Formats) {
		return fmt.Errorf("unknown format: %v", options.ReportFormat)
	}
	return nil
}
