package util

import (
	"net/http"
	"time"

	"github.com/mostlysecurity/chapterpost/util/ssrf"

	"github.com/hashicorp/go-cleanhttp"
)

// Generates an HTTP client with decent general-purpose defaults around
// timeouts and connection pooling, for talking to the PDS.
//
// Requests are not retried: a failed request is surfaced to the caller, which
// decides whether a degraded resubmission makes sense.
func RobustHTTPClient() *http.Client {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = 20 * time.Second
	return client
}

// HTTP client for fetching arbitrary third-party URLs (link previews and
// thumbnails). When publicOnly is set, connections to private, loopback, and
// otherwise reserved address ranges are refused.
func FetchHTTPClient(publicOnly bool) *http.Client {
	if publicOnly {
		return &http.Client{
			Transport: ssrf.PublicOnlyTransport(),
			Timeout:   15 * time.Second,
		}
	}
	client := cleanhttp.DefaultClient()
	client.Timeout = 15 * time.Second
	return client
}
