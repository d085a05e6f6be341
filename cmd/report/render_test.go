package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/devguard-io/devguard/internal/findings"
	"github.com/devguard-io/devguard/pkg/shared/config"
)

func sampleReport() *findings.Report {
	results := []findings.Finding{
		{
			FileName:      "app.py",
			LineNumber:    42,
			RiskType:      "SQL Injection",
			Severity:      "High",
			Description:   "User input is concatenated into a query.",
			FixSuggestion: "Use parameterized queries.",
		},
		{
			FileName: ".env",
			RiskType: "Sensitive Data",
			Severity: "Low",
		},
	}
	ts := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	return findings.NewReport("20240305_103000", ts, results, &findings.Metadata{
		Target:    "/tmp/juice-shop",
		UserID:    "local",
		FileCount: 2,
		FileNames: []string{"app.py", ".env"},
	})
}

// clearCIEnv blanks the provider detection variables so render tests behave
// the same inside and outside CI runners.
func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GITHUB_REPOSITORY", "GITHUB_SHA",
		"GITLAB_CI", "CI_PROJECT_PATH",
		"BITBUCKET_WORKSPACE", "BITBUCKET_REPO_SLUG",
	} {
		t.Setenv(name, "")
	}
}

func TestRenderJSON(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "out.json")

	reportPath, err := Render(&config.Config{}, hclog.NewNullLogger(), sampleReport(), "/tmp/juice-shop", RenderOptions{
		Format:     FormatJSON,
		OutputPath: outputPath,
	})
	assert.NoError(t, err)
	assert.Equal(t, outputPath, reportPath)

	data, err := os.ReadFile(reportPath)
	assert.NoError(t, err)

	var rep findings.Report
	assert.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, "20240305_103000", rep.ReportID)
	assert.Equal(t, 2, rep.TotalFindings)
}

func TestRenderCSV(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "out.csv")

	reportPath, err := Render(&config.Config{}, hclog.NewNullLogger(), sampleReport(), "/tmp/juice-shop", RenderOptions{
		Format:     FormatCSV,
		OutputPath: outputPath,
	})
	assert.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "file_name,line_number,risk_type,severity")
	assert.Contains(t, string(data), "SQL Injection")
}

func TestRenderSARIF(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "out.sarif")

	reportPath, err := Render(&config.Config{}, hclog.NewNullLogger(), sampleReport(), "/tmp/juice-shop", RenderOptions{
		Format:     FormatSARIF,
		OutputPath: outputPath,
	})
	assert.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "2.1.0")
	assert.Contains(t, string(data), "sql-injection")
}

func TestRenderHTML(t *testing.T) {
	clearCIEnv(t)
	outputPath := filepath.Join(t.TempDir(), "out.html")

	reportPath, err := Render(&config.Config{}, hclog.NewNullLogger(), sampleReport(), "/tmp/juice-shop", RenderOptions{
		Format:        FormatHTML,
		OutputPath:    outputPath,
		TemplatesPath: filepath.Join("..", "..", "templates"),
	})
	assert.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	assert.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "DevGuard Report")
	assert.Contains(t, html, "Finding #1: SQL Injection")
	assert.Contains(t, html, "app.py")
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(&config.Config{}, hclog.NewNullLogger(), sampleReport(), "/tmp/juice-shop", RenderOptions{
		Format:     "xml",
		OutputPath: filepath.Join(t.TempDir(), "out.xml"),
	})
	assert.EqualError(t, err, "unknown format: xml")
}

func TestComposeMetadataCIFallback(t *testing.T) {
	clearCIEnv(t)
	t.Setenv("GITHUB_REPOSITORY", "octocat/hello-world")
	t.Setenv("GITHUB_REF_NAME", "main")
	t.Setenv("GITHUB_SHA", "abcdef123456")

	metadata := composeMetadata(hclog.NewNullLogger(), sampleReport(), RenderOptions{Title: "Custom Title"})

	assert.Equal(t, "Custom Title", metadata.Title)
	assert.Equal(t, "octocat/hello-world", metadata.RepositoryFullName)
	assert.Equal(t, "main", metadata.BranchName)
	assert.Equal(t, "abcdef123456", metadata.CommitHash)
	assert.Equal(t, 1, metadata.SeverityInfo["high"])
	assert.Equal(t, 1, metadata.SeverityInfo["low"])
	assert.Equal(t, 2, metadata.SeverityInfo["total"])
}

func TestComposeMetadataOutsideRepoAndCI(t *testing.T) {
	clearCIEnv(t)

	metadata := composeMetadata(hclog.NewNullLogger(), sampleReport(), RenderOptions{
		SourceFolder: t.TempDir(),
	})

	assert.Equal(t, "DevGuard Report", metadata.Title)
	assert.Empty(t, metadata.RepositoryFullName)
	assert.Empty(t, metadata.BranchName)
}
