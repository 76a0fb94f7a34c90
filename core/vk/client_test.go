package vk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keei051/kara-boy/core/config"
)

// newTestClient points a client at srv for API calls and swaps in a validator
// that accepts every URL without probing it.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	cfg := config.VKConfig{
		Token:   "test-token",
		BaseURL: srv.URL,
		Version: "5.199",
	}
	c := NewClient(cfg, srv.Client(), zap.NewNop())
	c.validator = NewValidator(okProbeClient(), 0)
	return c
}

// okProbeClient answers every reachability probe with 200 without touching the network.
func okProbeClient() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestShorten(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/utils.getShortLink", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
		assert.Equal(t, "5.199", r.URL.Query().Get("v"))
		assert.Equal(t, "https://example.com/page", r.URL.Query().Get("url"))
		w.Write([]byte(`{"response":{"short_url":"https://vk.cc/abc","key":"abc"}}`))
	}))
	defer srv.Close()

	link, err := newTestClient(t, srv).Shorten(context.Background(), "https://example.com/page")
	require.NoError(t, err)
	assert.Equal(t, "https://vk.cc/abc", link.ShortURL)
	assert.Equal(t, "abc", link.StatsKey)
}

func TestShortenAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"error_code":100,"error_msg":"bad url"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Shorten(context.Background(), "https://example.com")
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "shortening service rejected the link", gwErr.Reason)
	assert.NotContains(t, gwErr.Error(), "bad url")
}

func TestShortenIncompleteReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"short_url":"https://vk.cc/abc"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Shorten(context.Background(), "https://example.com")
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "shortening service returned an unexpected reply", gwErr.Reason)
}

func TestShortenTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Shorten(context.Background(), "https://example.com")
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "shortening service is unavailable", gwErr.Reason)
}

func TestShortenRejectsInvalidURL(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Shorten(context.Background(), "ftp://example.com")
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "invalid or unreachable URL", gwErr.Reason)
	assert.False(t, called, "shortening must not be attempted for an invalid URL")
}

func TestRedactURL(t *testing.T) {
	redacted := redactURL("https://api.vk.com/method/utils.getShortLink?access_token=oops&url=https%3A%2F%2Fexample.com&v=5.199")
	assert.NotContains(t, redacted, "oops")
	assert.Contains(t, redacted, "access_token=REDACTED")
	assert.Contains(t, redacted, "v=5.199")

	assert.Equal(t, "<unparseable url>", redactURL("://bad"))
}
