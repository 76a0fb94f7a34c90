package telegram

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	calls     int
	failTimes int
	err       error
}

func (f *fakeTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= f.failTimes {
		return nil, f.err
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return false }

func TestRetryTransportRetriesTimeouts(t *testing.T) {
	base := &fakeTransport{failTimes: 2, err: &url.Error{Op: "Get", Err: timeoutErr{}}}
	rt := &retryTransport{base: base, maxRetries: 3}

	req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, base.calls)
}

func TestRetryTransportGivesUpOnPermanentErrors(t *testing.T) {
	permanent := errors.New("certificate invalid")
	base := &fakeTransport{failTimes: 10, err: permanent}
	rt := &retryTransport{base: base, maxRetries: 3}

	req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, base.calls)
}

func TestRetryTransportExhaustsAttempts(t *testing.T) {
	base := &fakeTransport{failTimes: 10, err: &url.Error{Op: "Get", Err: timeoutErr{}}}
	rt := &retryTransport{base: base, maxRetries: 2}

	req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	assert.Error(t, err)
	assert.Equal(t, 3, base.calls)
}
