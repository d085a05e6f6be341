package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/devguard-io/devguard/internal/findings"
)

const parsePreviewLimit = 2000

var (
	fencedObjectPattern   = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	findingsObjectPattern = regexp.MustCompile(`(?s)(\{\s*"findings"\s*:\s*\[.*?\]\s*\})`)
)

// envelope is the shape the model is asked to answer with. Error captures
// responses where the model explains a failure instead of returning
// findings.
type envelope struct {
	Error    interface{}  `json:"error"`
	Findings []rawFinding `json:"findings"`
}

// rawFinding keeps every field loosely typed because models frequently emit
// numbers for strings and strings for numbers.
type rawFinding struct {
	FileName      interface{} `json:"file_name"`
	LineNumber    interface{} `json:"line_number"`
	RiskType      interface{} `json:"risk_type"`
	Severity      interface{} `json:"severity"`
	Description   interface{} `json:"description"`
	WhyProblem    interface{} `json:"why_problem"`
	FixSuggestion interface{} `json:"fix_suggestion"`
	WhatToChange  interface{} `json:"what_to_change"`
}

// ParseFindings extracts the findings array from raw model output. Models
// wrap their JSON in markdown fences, prefix it with prose or trail it with
// commentary, so extraction works through a sequence of increasingly
// permissive strategies before giving up.
//
// A non-nil error describes why nothing could be extracted. It is meant for
// logging only, parse failures are final and never retried.
func ParseFindings(raw string) ([]findings.Finding, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return []findings.Finding{}, nil
	}

	// JSON inside a markdown code fence.
	if match := fencedObjectPattern.FindStringSubmatch(text); match != nil {
		if env, ok := decodeObject(match[1]); ok {
			return env.result()
		}
	}

	// First balanced JSON object anywhere in the text.
	if candidate := findJSONObject(text); candidate != "" {
		if env, ok := decodeObject(candidate); ok {
			return env.result()
		}
		// The first brace may open an unrelated object. Rescan from the
		// last brace before the findings key.
		if idx := strings.Index(text, `"findings"`); idx != -1 {
			if brace := strings.LastIndex(text[:idx], "{"); brace != -1 {
				if candidate := findJSONObject(text[brace:]); candidate != "" {
					if env, ok := decodeObject(candidate); ok {
						return env.result()
					}
				}
			}
		}
	}

	// The whole text as an object, or as a bare findings array.
	if env, ok := decodeObject(text); ok {
		return env.result()
	}
	var list []rawFinding
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return materialize(list), nil
	}

	// Last resort: a findings object located by regex.
	if match := findingsObjectPattern.FindStringSubmatch(text); match != nil {
		if env, ok := decodeObject(match[1]); ok {
			return env.result()
		}
	}

	return []findings.Finding{}, &ParseError{Preview: preview(text, parsePreviewLimit)}
}

// findJSONObject returns the first balanced JSON object in text. Braces
// inside quoted strings do not count towards nesting.
func findJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		char := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch char {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

func decodeObject(text string) (*envelope, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, false
	}
	return &env, true
}

func (e *envelope) result() ([]findings.Finding, error) {
	if e.Error != nil {
		return []findings.Finding{}, &ErrorResponse{Message: coerceString(e.Error)}
	}
	return materialize(e.Findings), nil
}

func materialize(raws []rawFinding) []findings.Finding {
	results := make([]findings.Finding, 0, len(raws))
	for _, raw := range raws {
		results = append(results, findings.Finding{
			FileName:      strings.TrimSpace(coerceString(raw.FileName)),
			LineNumber:    coerceLineNumber(raw.LineNumber),
			RiskType:      coerceString(raw.RiskType),
			Severity:      findings.NormalizeSeverity(coerceString(raw.Severity)),
			Description:   coerceString(raw.Description),
			WhyProblem:    coerceString(raw.WhyProblem),
			FixSuggestion: coerceString(raw.FixSuggestion),
			WhatToChange:  coerceString(raw.WhatToChange),
		})
	}
	return results
}

func coerceString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func coerceLineNumber(value interface{}) int {
	switch v := value.(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
