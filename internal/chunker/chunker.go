package chunker

import "strings"

const (
	// DefaultWindowSize is the number of lines per chunk when no override
	// is configured.
	DefaultWindowSize = 20
	// RiskWindowSize is the tighter window the risk pipeline chunks with,
	// small enough that a signature hit pins down a narrow line range.
	RiskWindowSize = 15
)

// Chunk is one contiguous window of lines from a source file. Line numbers
// are 1-indexed and inclusive. RiskScore is zero until the risk ranker
// scores the chunk and is never changed afterwards.
type Chunk struct {
	SourceFile string
	StartLine  int
	EndLine    int
	Text       string
	RiskScore  int
}

// Split cuts file content into consecutive, non-overlapping windows of at
// most windowSize lines each. Every chunk except possibly the last contains
// exactly windowSize lines. Empty content yields no chunks.
func Split(content, fileName string, windowSize int) []Chunk {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	lines := splitLines(content)
	if len(lines) == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, (len(lines)+windowSize-1)/windowSize)
	for start := 0; start < len(lines); start += windowSize {
		end := start + windowSize
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, Chunk{
			SourceFile: fileName,
			StartLine:  start + 1,
			EndLine:    end,
			Text:       strings.Join(lines[start:end], "\n"),
		})
	}
	return chunks
}

// splitLines splits on newlines without producing a phantom trailing line
// for newline-terminated content.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
