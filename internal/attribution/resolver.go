package attribution

import (
	"strings"

	"github.com/devguard-io/devguard/internal/batch"
	"github.com/devguard-io/devguard/internal/findings"
	"github.com/hashicorp/go-hclog"
)

// Strategy names describe how a finding was mapped back to a source file.
// They appear in logs only.
const (
	StrategyReported  = "model-reported"
	StrategyLineRange = "line-range"
	StrategyGeneric   = "generic-name"
	StrategyFallback  = "first-chunk"
)

// genericNameMarkers flag file names the model invents when it describes the
// payload instead of a real file from a chunk header.
var genericNameMarkers = []string{"chunk", "code", "filtered"}

// Resolver maps parsed findings back onto the files of the batch that
// produced them. Models regularly drop or invent file names, so every
// finding gets pinned to a file that is actually present in the batch.
type Resolver struct {
	logger hclog.Logger
}

func NewResolver(logger hclog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve returns a copy of results where every file name refers to a file
// present in b. Strategies are tried in order per finding:
//
//  1. keep the reported name when it matches a batch file
//  2. locate the reported line number inside a chunk's line range
//  3. map generic payload names to the batch's first file
//  4. fall back to the first chunk's source file
//
// Finding order is preserved and nothing else on a finding is touched.
func (r *Resolver) Resolve(results []findings.Finding, b batch.Batch) []findings.Finding {
	if len(results) == 0 || len(b.Chunks) == 0 {
		return results
	}

	batchFiles := make(map[string]bool, len(b.Chunks))
	for _, chunk := range b.Chunks {
		batchFiles[chunk.SourceFile] = true
	}
	firstFile := b.Chunks[0].SourceFile

	resolved := make([]findings.Finding, len(results))
	for i, finding := range results {
		reported := strings.TrimSpace(finding.FileName)
		fileName, strategy := r.resolveOne(reported, finding.LineNumber, b, batchFiles, firstFile)

		finding.FileName = fileName
		resolved[i] = finding
		r.logger.Debug("attributed finding to source file",
			"file", fileName, "reported", reported, "strategy", strategy)
	}
	return resolved
}

func (r *Resolver) resolveOne(reported string, line int, b batch.Batch, batchFiles map[string]bool, firstFile string) (string, string) {
	if batchFiles[reported] {
		return reported, StrategyReported
	}

	if line > 0 {
		for _, chunk := range b.Chunks {
			if line >= chunk.StartLine && line <= chunk.EndLine {
				return chunk.SourceFile, StrategyLineRange
			}
		}
	}

	if reported != "" && isGenericName(reported) {
		return firstFile, StrategyGeneric
	}

	return firstFile, StrategyFallback
}

func isGenericName(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range genericNameMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
