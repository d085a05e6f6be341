// Package export renders scan findings into the interchange formats the CLI
// can emit alongside the canonical JSON report.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/devguard-io/devguard/internal/findings"
)

// csvColumns is the fixed header layout downstream consumers rely on.
var csvColumns = []string{
	"file_name",
	"line_number",
	"risk_type",
	"severity",
	"description",
	"fix_suggestion",
	"what_to_change",
	"why_problem",
}

// CSV renders findings as a CSV document with a fixed header row. An empty
// findings list yields an empty string so callers can skip the artifact
// entirely.
func CSV(results []findings.Finding) (string, error) {
	if len(results) == 0 {
		return "", nil
	}

	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, csvColumns)
	for _, f := range results {
		rows = append(rows, []string{
			f.FileName,
			strconv.Itoa(f.LineNumber),
			f.RiskType,
			f.Severity,
			f.Description,
			f.FixSuggestion,
			f.WhatToChange,
			f.WhyProblem,
		})
	}

	var buf bytes.Buffer
	if err := csv.NewWriter(&buf).WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to render CSV: %w", err)
	}
	return buf.String(), nil
}
