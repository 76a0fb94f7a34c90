package vk

import (
	"context"
	"net/http"
	"regexp"
	"time"
)

// maxURLLen rejects absurdly long URLs before any network round trip.
const maxURLLen = 4096

// urlShape requires an http/https scheme and forbids embedded whitespace.
var urlShape = regexp.MustCompile(`^https?://\S+$`)

// Validator checks the syntactic shape and live reachability of candidate URLs.
type Validator struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewValidator builds a validator probing through the given client.
func NewValidator(httpClient *http.Client, timeout time.Duration) *Validator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Validator{httpClient: httpClient, timeout: timeout}
}

// IsValid reports whether rawURL looks like an http(s) URL and answers a
// header-only probe with a success or redirect status. Rate-limited and
// failing targets, transport errors and timeouts all collapse to false.
func (v *Validator) IsValid(ctx context.Context, rawURL string) bool {
	if len(rawURL) > maxURLLen {
		return false
	}
	if !urlShape.MatchString(rawURL) {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return false
	}
	return resp.StatusCode >= 200 && resp.StatusCode < 400
}
