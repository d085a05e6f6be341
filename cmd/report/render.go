package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/devguard-io/devguard/internal/ci"
	"github.com/devguard-io/devguard/internal/export"
	"github.com/devguard-io/devguard/internal/findings"
	"github.com/devguard-io/devguard/internal/git"
	"github.com/devguard-io/devguard/internal/scanner"
	"github.com/devguard-io/devguard/internal/template"
	"github.com/devguard-io/devguard/pkg/shared/config"
	"github.com/devguard-io/devguard/pkg/shared/files"
)

// Report formats that can be rendered from a scan artifact.
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatSARIF = "sarif"
	FormatHTML  = "html"
)

// Formats lists every format the render pipeline understands.
var Formats = []string{FormatJSON, FormatCSV, FormatSARIF, FormatHTML}

// RenderOptions carries the per-render settings shared by the scan and
// report commands.
type RenderOptions struct {
	Format        string
	OutputPath    string
	SourceFolder  string
	TemplatesPath string
	Title         string
}

// ReportMetadata carries everything the HTML template shows beside the
// findings themselves.
type ReportMetadata struct {
	git.RepositoryMetadata
	Title        string
	Time         time.Time
	SeverityInfo map[string]int
}

// Render writes the report in the requested format and returns the path it
// landed at. An empty output path places the file in the results folder
// under the generated report name.
func Render(cfg *config.Config, logger hclog.Logger, rep *findings.Report, target string, opts RenderOptions) (string, error) {
	nameTemplate := scanner.ReportFileName(cfg, target, opts.Format)
	reportPath, err := scanner.DetermineReportPath(cfg, opts.OutputPath, nameTemplate)
	if err != nil {
		return "", err
	}

	switch opts.Format {
	case FormatJSON:
		body, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to serialize report: %w", err)
		}
		if err := files.WriteJsonFile(reportPath, body); err != nil {
			return "", err
		}
	case FormatCSV:
		content, err := export.CSV(rep.Findings)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(reportPath, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("failed to write CSV report: %w", err)
		}
	case FormatSARIF:
		if err := writeSARIFFile(reportPath, rep.Findings); err != nil {
			return "", err
		}
	case FormatHTML:
		if err := renderHTML(logger, rep, reportPath, opts); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown format: %v", opts.Format)
	}

	logger.Info("report written", "format", opts.Format, "path", reportPath)
	return reportPath, nil
}

func writeSARIFFile(reportPath string, results []findings.Finding) error {
	file, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	return export.WriteSARIF(file, results)
}

// renderHTML parses the html template and generates the report file with
// metadata collected from the checkout or the CI environment.
func renderHTML(logger hclog.Logger, rep *findings.Report, reportPath string, opts RenderOptions) error {
	tmpl, err := template.NewTemplate(filepath.Join(opts.TemplatesPath, "report.html"))
	if err != nil {
		return err
	}

	data := struct {
		Metadata *ReportMetadata
		Report   *findings.Report
	}{
		Metadata: composeMetadata(logger, rep, opts),
		Report:   rep,
	}

	file, err := os.Create(reportPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return tmpl.Execute(file, data)
}

// composeMetadata collects the repository coordinates for the report header.
// A local checkout wins, the CI environment fills the gaps when the source
// folder is absent or not a repository.
func composeMetadata(logger hclog.Logger, rep *findings.Report, opts RenderOptions) *ReportMetadata {
	metadata := &ReportMetadata{
		Title:        config.SetThen(opts.Title, "DevGuard Report"),
		Time:         time.Now().UTC(),
		SeverityInfo: findings.SeverityCounts(rep.Findings),
	}

	if opts.SourceFolder != "" {
		repositoryMetadata, err := git.CollectRepositoryMetadata(opts.SourceFolder)
		if err != nil {
			logger.Debug("can't collect repository metadata", "err", err)
		}
		if repositoryMetadata != nil {
			metadata.RepositoryMetadata = *repositoryMetadata
		}
	}

	if metadata.RepositoryFullName == "" {
		if env, ok := ci.Current(); ok {
			metadata.RepositoryFullName = env.RepositoryFullName
			metadata.BranchName = env.ReferenceName
			metadata.CommitHash = env.CommitHash
		}
	}

	return metadata
}
