// Package uploader delivers analysis results to the remote backends.
//
// Two backends are involved: the facial analysis service receives per-frame
// records and end-of-session batches, and the analytics service receives
// user-interaction events. Delivery is best effort with no retries; a failed
// upload leaves the session marked as not uploaded so it can be resubmitted.
package uploader

import (
	"net"
	"net/http"
	"time"
)

// Default timeouts for HTTP operations.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// newHTTPClient creates an HTTP client with explicit timeouts.
// Use this instead of http.DefaultClient so a stalled backend cannot
// hang the pipeline.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DefaultConnectTimeout,
				KeepAlive: DefaultKeepAlive,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       DefaultIdleConnTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
