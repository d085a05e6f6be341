package attribution

import (
	"testing"

	"github.com/devguard-io/devguard/internal/batch"
	"github.com/devguard-io/devguard/internal/chunker"
	"github.com/devguard-io/devguard/internal/findings"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBatch() batch.Batch {
	return batch.Batch{
		Index: 1,
		Chunks: []chunker.Chunk{
			{SourceFile: "app.py", StartLine: 1, EndLine: 15, Text: "a"},
			{SourceFile: "app.py", StartLine: 16, EndLine: 30, Text: "b"},
			{SourceFile: "config.yml", StartLine: 1, EndLine: 15, Text: "c"},
			{SourceFile: "main.js", StartLine: 31, EndLine: 45, Text: "d"},
		},
	}
}

func resolve(t *testing.T, finding findings.Finding) findings.Finding {
	t.Helper()

	resolver := NewResolver(hclog.NewNullLogger())
	resolved := resolver.Resolve([]findings.Finding{finding}, testBatch())
	require.Len(t, resolved, 1)
	return resolved[0]
}

func TestResolveKeepsReportedBatchFile(t *testing.T) {
	resolved := resolve(t, findings.Finding{FileName: "config.yml", LineNumber: 999})

	assert.Equal(t, "config.yml", resolved.FileName)
}

func TestResolveTrimsReportedName(t *testing.T) {
	resolved := resolve(t, findings.Finding{FileName: "  main.js  "})

	assert.Equal(t, "main.js", resolved.FileName)
}

func TestResolveByLineRange(t *testing.T) {
	resolved := resolve(t, findings.Finding{FileName: "database.py", LineNumber: 33})

	assert.Equal(t, "main.js", resolved.FileName)
}

func TestResolveLineRangePicksFirstMatchingChunk(t *testing.T) {
	// Line 5 falls inside both app.py chunk 1-15 and config.yml chunk 1-15,
	// the earlier chunk wins.
	resolved := resolve(t, findings.Finding{FileName: "unknown.txt", LineNumber: 5})

	assert.Equal(t, "app.py", resolved.FileName)
}

func TestResolveGenericNameUsesFirstFile(t *testing.T) {
	for _, name := range []string{"filtered_code_chunks", "code_chunks", "Chunk 3", "source code"} {
		resolved := resolve(t, findings.Finding{FileName: name})

		assert.Equal(t, "app.py", resolved.FileName, "name %q", name)
	}
}

func TestResolveFallsBackToFirstChunkFile(t *testing.T) {
	tests := []struct {
		name    string
		finding findings.Finding
	}{
		{name: "unknown file without line", finding: findings.Finding{FileName: "database.py"}},
		{name: "no file no line", finding: findings.Finding{}},
		{name: "line outside every chunk", finding: findings.Finding{FileName: "database.py", LineNumber: 500}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolved := resolve(t, tc.finding)

			assert.Equal(t, "app.py", resolved.FileName)
		})
	}
}

func TestResolvePreservesOrderAndOtherFields(t *testing.T) {
	resolver := NewResolver(hclog.NewNullLogger())
	input := []findings.Finding{
		{FileName: "config.yml", LineNumber: 2, Severity: "High", Description: "first"},
		{FileName: "bogus.txt", LineNumber: 20, Severity: "Low", Description: "second"},
	}

	resolved := resolver.Resolve(input, testBatch())

	require.Len(t, resolved, 2)
	assert.Equal(t, "config.yml", resolved[0].FileName)
	assert.Equal(t, "first", resolved[0].Description)
	assert.Equal(t, "app.py", resolved[1].FileName)
	assert.Equal(t, "second", resolved[1].Description)
	assert.Equal(t, "Low", resolved[1].Severity)
	assert.Equal(t, 20, resolved[1].LineNumber)

	// the input slice is not mutated
	assert.Equal(t, "bogus.txt", input[1].FileName)
}

func TestResolveEmptyBatchLeavesFindingsAlone(t *testing.T) {
	resolver := NewResolver(hclog.NewNullLogger())
	input := []findings.Finding{{FileName: "orphan.py"}}

	resolved := resolver.Resolve(input, batch.Batch{})

	assert.Equal(t, input, resolved)
}
