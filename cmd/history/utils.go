package history

import (
	"fmt"
	"io"

	"github.com/devguard-io/devguard/internal/findings"
	"github.com/devguard-io/devguard/internal/storage"
)

// printHistory renders stored scans one line per scan, newest first.
func printHistory(w io.Writer, userID string, records []storage.ScanRecord) {
	if len(records) == 0 {
		fmt.Fprintf(w, "No scans recorded for user %q\n", userID)
		return
	}

	fmt.Fprintf(w, "Last %d scan(s) for user %q:\n", len(records), userID)
	for _, record := range records {
		counts := findings.SeverityCounts(record.Findings)
		line := fmt.Sprintf("  %s  %s  %d finding(s) (%d high, %d medium, %d low)",
			record.Timestamp, record.ScanID, record.TotalFindings,
			counts["high"], counts["medium"], counts["low"])
		if repository := record.Metadata["repository"]; repository != "" {
			line += "  " + repository
		}
		fmt.Fprintln(w, line)
	}
}
