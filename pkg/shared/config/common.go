package config

import (
	"crypto/tls"
	"time"
)

// RestyDefaults is the effective settings set outgoing HTTP clients are
// built with. Values the http_client directive leaves unset stay at these
// defaults.
type RestyDefaults struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	TLSClientConfig  *tls.Config
	Proxy            string
	Debug            bool
}

// DefaultRestyConfig returns the baseline for outgoing HTTP clients. The
// timeout covers short metadata calls, the model client raises its own
// timeout for long completions.
func DefaultRestyConfig() RestyDefaults {
	return RestyDefaults{
		RetryCount:       5,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 2 * time.Second,
		Timeout:          10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}
