package scan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devguard-io/devguard/cmd/report"
	"github.com/devguard-io/devguard/internal/ci"
	"github.com/devguard-io/devguard/internal/findings"
	"github.com/devguard-io/devguard/internal/llm"
	"github.com/devguard-io/devguard/internal/scanner"
	"github.com/devguard-io/devguard/pkg/shared"
	"github.com/devguard-io/devguard/pkg/shared/artifacts"
	"github.com/devguard-io/devguard/pkg/shared/config"
	"github.com/devguard-io/devguard/pkg/shared/logger"
)

// reportIDLayout names report artifacts after the scan start time.
const reportIDLayout = "20060102_150405"

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	InputFile     string
	OutputPath    string
	ReportFormat  string
	TemplatesPath string
	Title         string
	UserID        string
	Store         bool
}

// Global variables for configuration and command arguments
var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scanning a project folder, the JSON report lands in the results folder
  devguard scan /path/to/my_project

  # Scanning a fetched repository and rendering an HTML report
  devguard scan --format html --output /tmp/report.html ~/.devguard/projects/github.com/acme/widget

  # Scanning every path listed in a file, one path per line
  devguard scan --input-file /path/to/targets.txt

  # Scanning with a SARIF report for CI annotation
  devguard scan --format sarif --output /tmp/devguard.sarif /path/to/my_project

  # Scanning and persisting the results to S3 and DynamoDB
  devguard scan --store --user-id acme /path/to/my_project`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--format/-f FORMAT] [--output/-o PATH] [--store] [--user-id/-u ID] {--input-file/-i PATH | PATH}",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scans source code for security issues with an LLM and reports the findings",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-scan")

	if err := validateScanArgs(&scanOptions, args); err != nil {
		logger.Error("invalid scan arguments", "error", err)
		return err
	}

	analyzer, err := llm.New(AppConfig, logger)
	if err != nil {
		logger.Error("failed to initialize the model client", "error", err)
		return err
	}

	worksetFiles, target, err := prepareWorkset(&scanOptions, args, logger)
	if err != nil {
		logger.Error("failed to collect scan files", "error", err)
		return err
	}
	if len(worksetFiles) == 0 {
		return fmt.Errorf("no scannable files found in %q", target)
	}

	s := scanner.New(AppConfig, analyzer, logger)
	s.Progress = func(message string) { fmt.Println(message) }

	result, err := s.Scan(cmd.Context(), worksetFiles)
	if err != nil {
		logger.Error("scan command failed", "error", err)
		return err
	}

	findings.SortBySeverity(result.Findings)

	rep := findings.NewReport(result.StartTime.Format(reportIDLayout), result.StartTime, result.Findings, &findings.Metadata{
		Target:    target,
		UserID:    ci.ResolveUserID(scanOptions.UserID),
		FileCount: result.FileCount,
		FileNames: result.FileNames,
	})

	// every run leaves its canonical JSON record in the results folder
	artifactPath, err := artifacts.SaveReportJSON(AppConfig, logger, rep)
	if err != nil {
		logger.Error("failed to save report", "error", err)
		return err
	}

	if wantsFormattedReport(&scanOptions) {
		reportPath, err := report.Render(AppConfig, logger, rep, target, report.RenderOptions{
			Format:        scanOptions.ReportFormat,
			OutputPath:    scanOptions.OutputPath,
			SourceFolder:  sourceFolder(args),
			TemplatesPath: scanOptions.TemplatesPath,
			Title:         scanOptions.Title,
		})
		if err != nil {
			logger.Error("failed to render report", "error", err)
			return err
		}
		fmt.Printf("Report written to %s\n", reportPath)
	}

	if scanOptions.Store {
		if err := storeScan(cmd.Context(), logger, rep, result.ScanID, target); err != nil {
			logger.Error("failed to persist scan results", "error", err)
			return err
		}
	}

	fmt.Printf("Scan %s finished: %d finding(s) across %d file(s), report saved to %s\n",
		result.ScanID, len(result.Findings), result.FileCount, artifactPath)
	logger.Info("scan command completed successfully")
	return nil
}

// wantsFormattedReport reports whether a rendered report is due on top of
// the canonical JSON artifact.
func wantsFormattedReport(options *RunOptionsScan) bool {
	return options.ReportFormat != report.FormatJSON || options.OutputPath != ""
}

// sourceFolder names the checkout repository metadata is collected from.
// There is no single source folder in input-file mode.
func sourceFolder(args []string) string {
	if determineMode(args) == ModeSinglePath {
		return args[0]
	}
	return ""
}

func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.InputFile, "input-file", "i", "", "Path to a file containing a list of paths to scan, one per line.")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "Path to the output file or directory where the rendered report will be saved.")
	ScanCmd.Flags().StringVarP(&scanOptions.ReportFormat, "format", "f", report.FormatJSON, "Format for the report with results (json, csv, sarif or html).")
	ScanCmd.Flags().StringVar(&scanOptions.TemplatesPath, "templates-path", "./templates", "Path to the folder with HTML templates.")
	ScanCmd.Flags().StringVar(&scanOptions.Title, "title", "DevGuard Report", "Title for a generated HTML report.")
	ScanCmd.Flags().StringVarP(&scanOptions.UserID, "user-id", "u", "", "User the scan history is stored under (default: the CI namespace or \"local\").")
	ScanCmd.Flags().BoolVar(&scanOptions.Store, "store", false, "Persist the report to S3 and the scan history to DynamoDB when configured.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
