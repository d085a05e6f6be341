package git

import (
	"errors"
	"fmt"

	"github.com/devguard-io/devguard/internal/workset"
)

var ErrNoCloneURL = errors.New("clone URL is required")

// RepositoryTooLargeError reports a repository exceeding the configured
// size cap, detected either before cloning or after the clone finished.
type RepositoryTooLargeError struct {
	URL   string
	Size  int64
	Limit int64
}

func (e *RepositoryTooLargeError) Error() string {
	return fmt.Sprintf("repository %s is %s which exceeds the %s limit",
		e.URL, workset.FormatSize(e.Size), workset.FormatSize(e.Limit))
}
