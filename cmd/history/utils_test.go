package history

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devguard-io/devguard/internal/findings"
	"github.com/devguard-io/devguard/internal/storage"
)

func TestPrintHistory(t *testing.T) {
	records := []storage.ScanRecord{
		{
			ScanID:        "0b92cbd4-4a12-41cf-a360-1b5b9ce1a7e0",
			Timestamp:     "2024-03-05T10:30:00Z",
			TotalFindings: 3,
			Findings: []findings.Finding{
				{RiskType: "SQL Injection", Severity: findings.SeverityHigh},
				{RiskType: "Sensitive Data Exposure", Severity: findings.SeverityHigh},
				{RiskType: "Improper Logging", Severity: findings.SeverityLow},
			},
			Metadata: map[string]string{"repository": "acme/widget", "branch": "main"},
		},
		{
			ScanID:        "8e0a6d1c-68b1-4a3f-9f60-2f3d3a6f1c55",
			Timestamp:     "2024-03-04T18:02:11Z",
			TotalFindings: 0,
			Findings:      []findings.Finding{},
		},
	}

	var out strings.Builder
	printHistory(&out, "acme", records)

	assert.Contains(t, out.String(), `Last 2 scan(s) for user "acme":`)
	assert.Contains(t, out.String(), "2024-03-05T10:30:00Z  0b92cbd4-4a12-41cf-a360-1b5b9ce1a7e0  3 finding(s) (2 high, 0 medium, 1 low)  acme/widget")
	assert.Contains(t, out.String(), "2024-03-04T18:02:11Z  8e0a6d1c-68b1-4a3f-9f60-2f3d3a6f1c55  0 finding(s) (0 high, 0 medium, 0 low)")
}

func TestPrintHistoryEmpty(t *testing.T) {
	var out strings.Builder
	printHistory(&out, "local", nil)

	assert.Equal(t, "No scans recorded for user \"local\"\n", out.String())
}
