package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/devguard-io/devguard/internal/findings"
	"github.com/devguard-io/devguard/pkg/shared/config"
	"github.com/devguard-io/devguard/pkg/shared/files"
)

// ReportFileName returns the canonical file name for a report artifact.
// Example: report_20240305_103000.json.
func ReportFileName(reportID, ext string) string {
	return fmt.Sprintf("report_%s.%s", reportID, ext)
}

// SaveReportJSON writes the report to <results>/report_<id>.json and returns
// the full path. Every scan run is persisted locally, including runs without
// findings, so the results folder stays the complete scan record.
func SaveReportJSON(cfg *config.Config, logger hclog.Logger, report *findings.Report) (string, error) {
	dir := config.GetResultsHome(cfg)
	path := filepath.Join(dir, ReportFileName(report.ReportID, "json"))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return path, fmt.Errorf("error marshaling the report: %w", err)
	}

	if err := files.CreateFolderIfNotExists(dir); err != nil {
		return path, err
	}
	if err := files.WriteJsonFile(path, data); err != nil {
		return path, fmt.Errorf("error writing report to file: %w", err)
	}
	logger.Info("report saved to file", "path", path)

	return path, nil
}

// LoadReportJSON reads a report previously produced by a scan run.
func LoadReportJSON(path string) (*findings.Report, error) {
	if err := files.ValidatePath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %q: %w", path, err)
	}

	report := &findings.Report{}
	if err := json.Unmarshal(data, report); err != nil {
		return nil, fmt.Errorf("failed to decode report %q: %w", path, err)
	}
	if report.Findings == nil {
		report.Findings = []findings.Finding{}
	}
	return report, nil
}
