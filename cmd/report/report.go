package report

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devguard-io/devguard/internal/findings"
	"github.com/devguard-io/devguard/pkg/shared"
	"github.com/devguard-io/devguard/pkg/shared/artifacts"
	"github.com/devguard-io/devguard/pkg/shared/config"
	"github.com/devguard-io/devguard/pkg/shared/logger"
)

// RunOptionsReport holds the arguments for the report command.
type RunOptionsReport struct {
	OutputPath    string
	ReportFormat  string
	TemplatesPath string
	Title         string
	SourceFolder  string
}

// Global variables for configuration and command arguments
var (
	AppConfig          *config.Config
	reportOptions      RunOptionsReport
	exampleReportUsage = `  # Rendering a saved scan artifact as an HTML report
  devguard report ~/.devguard/results/report_20240305_103000.json

  # Re-exporting a saved artifact as CSV to a specific file
  devguard report --format csv -o /tmp/findings.csv ~/.devguard/results/report_20240305_103000.json

  # Rendering HTML with repository context taken from the scanned checkout
  devguard report --source ~/.devguard/projects/github.com/acme/widget ~/.devguard/results/report_20240305_103000.json`
)

// ReportCmd represents the report command.
var ReportCmd = &cobra.Command{
	Use:                   "report [--format/-f FORMAT] [--output/-o PATH] [--source/-s PATH] ARTIFACT",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleReportUsage,
	Short:                 "Re-exports a saved scan artifact as an HTML, CSV, SARIF or JSON report",
	RunE:                  runReportCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runReportCommand executes the report command.
func runReportCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-report")

	if err := validateReportArgs(&reportOptions, args); err != nil {
		logger.Error("invalid report arguments", "error", err)
		return err
	}

	rep, err := artifacts.LoadReportJSON(args[0])
	if err != nil {
		logger.Error("failed to load report artifact", "error", err)
		return err
	}

	reportPath, err := Render(AppConfig, logger, rep, reportTarget(rep, args[0]), RenderOptions{
		Format:        reportOptions.ReportFormat,
		OutputPath:    reportOptions.OutputPath,
		SourceFolder:  renderSource(rep, reportOptions.SourceFolder),
		TemplatesPath: reportOptions.TemplatesPath,
		Title:         reportOptions.Title,
	})
	if err != nil {
		logger.Error("report command failed", "error", err)
		return err
	}

	fmt.Println(reportPath)
	logger.Info("report command completed successfully")
	return nil
}

// reportTarget picks the label generated report files are named after.
func reportTarget(rep *findings.Report, artifactPath string) string {
	if rep.Metadata != nil && rep.Metadata.Target != "" {
		return rep.Metadata.Target
	}
	return artifactPath
}

// renderSource falls back to the recorded scan target so re-rendered reports
// keep their repository context without an explicit --source flag.
func renderSource(rep *findings.Report, sourceFolder string) string {
	if sourceFolder != "" {
		return sourceFolder
	}
	if rep.Metadata != nil {
		return rep.Metadata.Target
	}
	return ""
}

func init() {
	ReportCmd.Flags().StringVarP(&reportOptions.ReportFormat, "format", "f", FormatHTML, "Format for the rendered report (html, csv, sarif or json).")
	ReportCmd.Flags().StringVarP(&reportOptions.OutputPath, "output", "o", "", "Path to the output file or directory where the rendered report will be saved.")
	ReportCmd.Flags().StringVarP(&reportOptions.SourceFolder, "source", "s", "", "Source folder the scan ran against, used for repository metadata in HTML reports.")
	ReportCmd.Flags().StringVar(&reportOptions.TemplatesPath, "templates-path", "./templates", "Path to the folder with HTML templates.")
	ReportCmd.Flags().StringVar(&reportOptions.Title, "title", "DevGuard Report", "Title for a generated HTML report.")
	ReportCmd.Flags().BoolP("help", "h", false, "Show help for the report command.")
}
