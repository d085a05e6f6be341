// Package scanner drives the scan pipeline: chunk the collected files,
// filter the risky chunks, batch them and hand every batch to the model,
// then attribute the findings back to their source files.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/devguard-io/devguard/internal/attribution"
	"github.com/devguard-io/devguard/internal/batch"
	"github.com/devguard-io/devguard/internal/chunker"
	"github.com/devguard-io/devguard/internal/findings"
	"github.com/devguard-io/devguard/internal/llm"
	"github.com/devguard-io/devguard/internal/risk"
	"github.com/devguard-io/devguard/internal/workset"
	"github.com/devguard-io/devguard/pkg/shared/config"
	"github.com/devguard-io/devguard/pkg/shared/files"
)

const defaultBatchInterval = 15 * time.Second

// Analyzer produces raw model output for one serialized batch payload.
type Analyzer interface {
	Analyze(ctx context.Context, batchText string) (string, error)
}

// Scanner represents the configuration and behavior of one scan run.
type Scanner struct {
	// Progress receives human readable status updates when set.
	Progress func(message string)

	analyzer      Analyzer     // produces model output per batch
	filter        *risk.Filter // selects the chunks worth analyzing
	resolver      *attribution.Resolver
	logger        hclog.Logger
	tempFolder    string        // parent of the per-run staging folder
	batchSize     int           // chunks per model call
	batchInterval time.Duration // pause before each model call round

	wait func(ctx context.Context, d time.Duration) error
}

// Result aggregates everything a scan run produced.
type Result struct {
	ScanID     string
	StartTime  time.Time
	Findings   []findings.Finding
	FileCount  int
	FileNames  []string
	ChunkCount int // risky chunks that went to analysis
	BatchCount int
}

// New creates a Scanner instance with the provided configuration.
func New(cfg *config.Config, analyzer Analyzer, logger hclog.Logger) *Scanner {
	return &Scanner{
		analyzer: analyzer,
		filter: risk.NewFilter(risk.Options{
			WindowSize:      cfg.Scan.WindowSize,
			ConfigChunkKeep: cfg.Scan.ConfigChunkKeep,
			SmallFileChunks: cfg.Scan.SmallFileChunks,
		}),
		resolver:      attribution.NewResolver(logger),
		logger:        logger,
		tempFolder:    config.GetTempHome(cfg),
		batchSize:     config.SetThen(cfg.Scan.BatchSize, batch.DefaultSize),
		batchInterval: config.SetThen(cfg.LLM.BatchInterval.Std(), defaultBatchInterval),
		wait:          waitFor,
	}
}

// Scan analyzes the given files and returns the accumulated findings. A
// failed batch is logged and skipped so one bad model response cannot sink
// the rest of the run, only context cancellation aborts it. Findings
// gathered before an abort stay on the returned result.
func (s *Scanner) Scan(ctx context.Context, worksetFiles []workset.File) (*Result, error) {
	result := &Result{
		ScanID:    uuid.New().String(),
		StartTime: time.Now().UTC(),
		Findings:  []findings.Finding{},
	}
	s.report("Starting scan %s: %d file(s) to analyze", result.ScanID, len(worksetFiles))

	staged, cleanup, err := s.stageFiles(worksetFiles)
	if err != nil {
		return result, err
	}
	defer cleanup()

	pool := s.collectRiskyChunks(staged, result)
	if len(pool) == 0 {
		s.report("No risky code sections found, nothing to analyze")
		return result, nil
	}

	batches := batch.Make(pool, s.batchSize)
	result.ChunkCount = len(pool)
	result.BatchCount = len(batches)
	s.report("Filtered to %d risky chunk(s) across %d batch(es)", len(pool), len(batches))

	for _, b := range batches {
		// pause before every batch, the first wait gives the API room
		// after any preceding traffic
		if err := s.wait(ctx, s.batchInterval); err != nil {
			return result, err
		}
		s.report("Processing batch %d/%d (%d chunks)", b.Index, len(batches), len(b.Chunks))

		resolved, err := s.analyzeBatch(ctx, b)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			s.logger.Warn("batch analysis failed, continuing with next batch", "batch", b.Index, "error", err)
			s.report("Batch %d/%d failed, continuing", b.Index, len(batches))
			continue
		}

		result.Findings = append(result.Findings, resolved...)
		s.report("Batch %d/%d done: %d new finding(s), %d total", b.Index, len(batches), len(resolved), len(result.Findings))
	}

	s.report("Scan complete: %d finding(s)", len(result.Findings))
	return result, nil
}

// stagedFile is one working copy inside the run's staging folder. Name keeps
// the original base name findings refer to, Path points at the staged copy.
type stagedFile struct {
	Name string
	Path string
}

// stageFiles copies the working set into a staging folder owned exclusively
// by this run. The returned cleanup removes the folder and runs on every
// exit path of Scan.
func (s *Scanner) stageFiles(worksetFiles []workset.File) ([]stagedFile, func(), error) {
	if s.tempFolder != "" {
		if err := files.CreateFolderIfNotExists(s.tempFolder); err != nil {
			return nil, func() {}, fmt.Errorf("failed to create temp folder '%s': %w", s.tempFolder, err)
		}
	}
	dir, err := os.MkdirTemp(s.tempFolder, "devguard_uploads_")
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create staging folder: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("could not remove staging folder", "path", dir, "error", err)
		}
	}

	staged := make([]stagedFile, 0, len(worksetFiles))
	for i, file := range worksetFiles {
		// the index prefix keeps same-named files from different folders apart
		path, err := files.EnsureWithinRoot(dir, filepath.Join(dir, fmt.Sprintf("%03d_%s", i+1, file.Name)))
		if err != nil {
			s.logger.Warn("skipping file with unusable name", "file", file.Path, "error", err)
			continue
		}
		if err := os.WriteFile(path, []byte(file.Content), 0600); err != nil {
			s.logger.Warn("skipping file that could not be staged", "file", file.Path, "error", err)
			continue
		}
		staged = append(staged, stagedFile{Name: file.Name, Path: path})
	}
	return staged, cleanup, nil
}

// collectRiskyChunks reads every staged file and keeps what the risk filter
// lets through, preserving file order in the pool. Unreadable or empty
// files are skipped, never fatal.
func (s *Scanner) collectRiskyChunks(staged []stagedFile, result *Result) []chunker.Chunk {
	var pool []chunker.Chunk
	for _, file := range staged {
		content, err := os.ReadFile(file.Path)
		if err != nil {
			s.logger.Warn("skipping unreadable staged file", "file", file.Name, "error", err)
			continue
		}
		if strings.TrimSpace(string(content)) == "" {
			s.logger.Debug("skipping empty staged file", "file", file.Name)
			continue
		}

		result.FileCount++
		result.FileNames = append(result.FileNames, file.Name)

		kept := s.filter.RiskySections(string(content), file.Name)
		s.logger.Debug("filtered file", "file", file.Name, "kept", len(kept))
		pool = append(pool, kept...)
	}
	return pool
}

func (s *Scanner) analyzeBatch(ctx context.Context, b batch.Batch) ([]findings.Finding, error) {
	raw, err := s.analyzer.Analyze(ctx, llm.SerializeBatch(b))
	if err != nil {
		return nil, err
	}

	parsed, parseErr := llm.ParseFindings(raw)
	if parseErr != nil {
		// a response that cannot be parsed is final for this batch
		s.logger.Warn("discarding unusable batch response", "batch", b.Index, "error", parseErr)
		return []findings.Finding{}, nil
	}
	return s.resolver.Resolve(parsed, b), nil
}

func (s *Scanner) report(format string, args ...interface{}) {
	if s.Progress != nil {
		s.Progress(fmt.Sprintf(format, args...))
	}
}

func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var labelSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ReportFileName generates the report file name for a scan target based on
// the CI mode. Outside CI the name carries the scan start time so
// consecutive runs do not overwrite each other.
func ReportFileName(cfg *config.Config, target, extension string) string {
	label := TargetLabel(target)
	if config.IsCI(cfg) {
		return fmt.Sprintf("devguard-report-%s.%s", label, extension)
	}
	startTime := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("devguard-report-%s-%s.%s", label, startTime, extension)
}

// TargetLabel derives a file-name-safe label from a scan target, which may
// be a local path or a repository URL.
func TargetLabel(target string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(target), "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	label := labelSanitizer.ReplaceAllString(filepath.Base(trimmed), "-")
	label = strings.Trim(label, "-.")
	if label == "" {
		return "scan"
	}
	return label
}

// DetermineReportPath resolves where a report file lands. An empty
// outputPath goes to the results home, a directory or extension-less path
// gets the generated name appended, anything else is used as given.
func DetermineReportPath(cfg *config.Config, outputPath, nameTemplate string) (string, error) {
	if outputPath == "" {
		resultsHome := config.GetResultsHome(cfg)
		if err := files.CreateFolderIfNotExists(resultsHome); err != nil {
			return "", fmt.Errorf("failed to create results folder '%s': %w", resultsHome, err)
		}
		return filepath.Join(resultsHome, nameTemplate), nil
	}

	reportFile, reportFolder, err := files.DetermineFileFullPath(outputPath, nameTemplate)
	if err != nil {
		return "", err
	}
	if err := files.CreateFolderIfNotExists(reportFolder); err != nil {
		return "", fmt.Errorf("failed to create results folder '%s': %w", reportFolder, err)
	}
	return reportFile, nil
}
