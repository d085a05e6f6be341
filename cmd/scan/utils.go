package scan

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/devguard-io/devguard/internal/ci"
	"github.com/devguard-io/devguard/internal/export"
	"github.com/devguard-io/devguard/internal/findings"
	"github.com/devguard-io/devguard/internal/git"
	"github.com/devguard-io/devguard/internal/storage"
	"github.com/devguard-io/devguard/internal/workset"
	"github.com/devguard-io/devguard/pkg/shared/config"
	"github.com/devguard-io/devguard/pkg/shared/files"
)

// prepareWorkset builds the scan working set for the validated arguments and
// returns it together with the target the report files are named after.
func prepareWorkset(options *RunOptionsScan, args []string, logger hclog.Logger) ([]workset.File, string, error) {
	collector := workset.NewCollector(logger, workset.Options{
		MaxTotalSize: config.SetThen(AppConfig.Scan.MaxTargetSize, workset.DefaultMaxTargetSize),
	})

	if determineMode(args) == ModeSinglePath {
		worksetFiles, err := collector.Collect(args[0])
		return worksetFiles, args[0], err
	}

	targets, err := files.ReadLines(options.InputFile)
	if err != nil {
		return nil, "", err
	}
	if len(targets) == 0 {
		return nil, "", fmt.Errorf("input file %q lists no targets", options.InputFile)
	}

	var worksetFiles []workset.File
	for _, target := range targets {
		collected, err := collector.Collect(target)
		if err != nil {
			return nil, "", fmt.Errorf("failed to collect %q: %w", target, err)
		}
		worksetFiles = append(worksetFiles, collected...)
	}
	return worksetFiles, options.InputFile, nil
}

// storeScan uploads the report to S3 and records the run in the history
// table. Both stores skip silently when not configured.
func storeScan(ctx context.Context, logger hclog.Logger, rep *findings.Report, scanID, target string) error {
	s3Store := storage.NewS3Store(AppConfig, logger)
	historyStore := storage.NewHistoryStore(AppConfig, logger)
	if !s3Store.Enabled() && !historyStore.Enabled() {
		logger.Warn("no storage configured, nothing to persist")
		return nil
	}

	s3Key, err := s3Store.UploadReport(ctx, rep)
	if err != nil {
		return err
	}
	if s3Key != "" {
		csvContent, err := export.CSV(rep.Findings)
		if err == nil && csvContent != "" {
			if _, err := s3Store.UploadCSV(ctx, rep.ReportID, csvContent); err != nil {
				logger.Warn("CSV upload failed, continuing", "error", err)
			}
		}
		if url, err := s3Store.ReportURL(s3Key, 0); err == nil && url != "" {
			fmt.Printf("Report download link: %s\n", url)
		}
	}

	return historyStore.SaveScan(ctx, storage.ScanEntry{
		UserID:   rep.Metadata.UserID,
		ScanID:   scanID,
		Findings: rep.Findings,
		Metadata: scanLabels(logger, target),
		S3Key:    s3Key,
	})
}

// scanLabels merges repository coordinates from the CI environment with the
// local checkout, the checkout wins on conflicts.
func scanLabels(logger hclog.Logger, target string) map[string]string {
	labels := map[string]string{}
	if env, ok := ci.Current(); ok {
		labels = env.Labels()
	}

	repositoryMetadata, err := git.CollectRepositoryMetadata(target)
	if err != nil {
		logger.Debug("can't collect repository metadata", "err", err)
	}
	for key, value := range repositoryMetadata.Labels() {
		labels[key] = value
	}
	return labels
}
