package template

import (
	"fmt"
	"html/template"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// add adds two integers and returns the result.
// helper function for html template
func add(a, b int) int {
	return a + b
}

// ordinalDate returns a string with the ordinal number of the day
// helper function for html template
func ordinalDate(day int) string {
	suffix := "th"
	switch day {
	case 1, 21, 31:
		suffix = "st"
	case 2, 22:
		suffix = "nd"
	case 3, 23:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", day, suffix)
}

// formatDateTime formats a time.Time object into a readable report timestamp.
// helper function for html template
func formatDateTime(t time.Time) string {
	return fmt.Sprintf("%s %s %d %s", ordinalDate(t.Day()), t.Month(), t.Year(), t.Format("15:04 MST"))
}

// severityClass picks the card accent class for a finding severity.
// helper function for html template
func severityClass(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "high", "critical":
		return "high"
	case "medium":
		return "medium"
	default:
		return "low"
	}
}

// nl2br escapes a text block and converts newlines into <br> tags so
// multi-line model output keeps its layout.
// helper function for html template
func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// baseName trims the directory part of an attributed file path.
// helper function for html template
func baseName(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(filepath.ToSlash(p))
}

func NewTemplate(templateFile string) (*template.Template, error) {
	return template.New("report.html").
		Funcs(template.FuncMap{
			"add":            add,
			"formatDateTime": formatDateTime,
			"severityClass":  severityClass,
			"nl2br":          nl2br,
			"baseName":       baseName,
		}).
		ParseFiles(templateFile)
}
