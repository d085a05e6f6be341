package findings

import "time"

// Report is the JSON envelope persisted for one scan run. It is the unit
// written to the results folder, uploaded to S3, and re-exported by the
// report command.
type Report struct {
	ReportID      string    `json:"report_id"`
	Timestamp     string    `json:"timestamp"`
	TotalFindings int       `json:"total_findings"`
	Findings      []Finding `json:"findings"`
	Metadata      *Metadata `json:"metadata,omitempty"`
}

// Metadata carries run details for one scan.
type Metadata struct {
	Target    string   `json:"target,omitempty"`
	UserID    string   `json:"user_id,omitempty"`
	FileCount int      `json:"file_count"`
	FileNames []string `json:"file_names"`
}

// NewReport assembles a report envelope for the given findings.
func NewReport(reportID string, t time.Time, results []Finding, meta *Metadata) *Report {
	if results == nil {
		results = []Finding{}
	}
	return &Report{
		ReportID:      reportID,
		Timestamp:     t.UTC().Format(time.RFC3339),
		TotalFindings: len(results),
		Findings:      results,
		Metadata:      meta,
	}
}
