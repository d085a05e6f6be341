package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/devguard-io/devguard/internal/findings"
)

const (
	sarifToolName = "DevGuard"
	sarifToolURI  = "https://github.com/devguard-io/devguard"
)

var ruleIDCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// WriteSARIF renders findings as a SARIF 2.1.0 document with a single run.
// Every distinct risk type becomes a rule and each finding a result located
// at the attributed file and line.
func WriteSARIF(w io.Writer, results []findings.Finding) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(sarifToolName, sarifToolURI)
	for _, f := range results {
		level := severityToLevel(f.Severity)
		rule := run.AddRule(ruleID(f.RiskType)).
			WithDescription(f.RiskType).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})

		physical := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.FileName))
		if f.LineNumber > 0 {
			physical = physical.WithRegion(sarif.NewRegion().WithStartLine(f.LineNumber))
		}

		run.AddResult(sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(resultMessage(f))).
			WithLevel(level).
			WithLocations([]*sarif.Location{sarif.NewLocation().WithPhysicalLocation(physical)}))
	}
	report.AddRun(run)

	if err := report.PrettyWrite(w); err != nil {
		return fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return nil
}

// ruleID derives a stable SARIF rule identifier from a free-form risk type.
func ruleID(riskType string) string {
	slug := ruleIDCleaner.ReplaceAllString(strings.ToLower(riskType), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "security-finding"
	}
	return slug
}

func resultMessage(f findings.Finding) string {
	if f.Description != "" {
		return f.Description
	}
	if f.RiskType != "" {
		return f.RiskType
	}
	return "Security finding"
}

func severityToLevel(severity string) string {
	switch findings.NormalizeSeverity(severity) {
	case findings.SeverityHigh:
		return "error"
	case findings.SeverityMedium:
		return "warning"
	case findings.SeverityLow:
		return "note"
	default:
		return "warning"
	}
}
