package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("LLM API key is not configured, set llm.api_key or DEVGUARD_LLM_API_KEY")

// ErrEmptyResponse is returned when the model API answers successfully but
// carries no usable message content.
var ErrEmptyResponse = errors.New("model returned empty content")

// QuotaError indicates the model API rejected a call for rate-limit or
// quota reasons. Calls failing with a QuotaError may be retried after a
// backoff, any other failure is final for the batch.
type QuotaError struct {
	StatusCode int
	Message    string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("model API quota exhausted (status %d): %s", e.StatusCode, e.Message)
}

// IsQuotaError reports whether err is a quota or rate-limit failure.
func IsQuotaError(err error) bool {
	var quotaErr *QuotaError
	return errors.As(err, &quotaErr)
}

// ErrorResponse reports that the model answered with an error object
// instead of findings. It is surfaced for logging and never retried.
type ErrorResponse struct {
	Message string
}

func (e *ErrorResponse) Error() string {
	return "model reported an error instead of findings: " + e.Message
}

// ParseError reports that no findings object could be extracted from the
// model output. Preview carries the head of the raw text for logging.
type ParseError struct {
	Preview string
}

func (e *ParseError) Error() string {
	return "could not parse model response: " + e.Preview
}

func isQuotaMessage(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(text, "429") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "quota")
}
