package findings

import (
	"sort"
	"strings"
)

// Severity levels reported for a finding.
const (
	SeverityHigh   = "High"
	SeverityMedium = "Medium"
	SeverityLow    = "Low"
)

// Finding is one security issue reported by the model and attributed back
// to a source file. Text fields default to empty strings and LineNumber to 0
// (unknown) so serialized findings never carry nulls.
type Finding struct {
	FileName      string `json:"file_name"`
	LineNumber    int    `json:"line_number"`
	RiskType      string `json:"risk_type"`
	Severity      string `json:"severity"`
	Description   string `json:"description"`
	WhyProblem    string `json:"why_problem"`
	FixSuggestion string `json:"fix_suggestion"`
	WhatToChange  string `json:"what_to_change"`
}

// NormalizeSeverity maps a model-reported severity to its canonical form,
// case-insensitively. Unrecognized values are returned unchanged so they stay
// visible in reports.
func NormalizeSeverity(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return strings.TrimSpace(severity)
	}
}

// SeverityRank orders severities for report sorting, highest first.
func SeverityRank(severity string) int {
	switch NormalizeSeverity(severity) {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

// SortBySeverity orders findings highest severity first. The sort is stable
// so findings with equal severity keep the order the model reported them in.
func SortBySeverity(results []Finding) {
	sort.SliceStable(results, func(i, j int) bool {
		return SeverityRank(results[i].Severity) < SeverityRank(results[j].Severity)
	})
}

// SeverityCounts tallies findings into high, medium, low and total buckets
// for report summaries. Severities outside the canonical set count as low.
func SeverityCounts(results []Finding) map[string]int {
	counts := map[string]int{
		"high":   0,
		"medium": 0,
		"low":    0,
		"total":  0,
	}

	for _, f := range results {
		switch NormalizeSeverity(f.Severity) {
		case SeverityHigh:
			counts["high"]++
		case SeverityMedium:
			counts["medium"]++
		default:
			counts["low"]++
		}
		counts["total"]++
	}

	return counts
}
