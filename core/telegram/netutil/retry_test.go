package netutil

import (
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{ timeout bool }

func (e timeoutErr) Error() string   { return "timeout" }
func (e timeoutErr) Timeout() bool   { return e.timeout }
func (e timeoutErr) Temporary() bool { return false }

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"net timeout", timeoutErr{timeout: true}, true},
		{"net non-timeout", timeoutErr{timeout: false}, false},
		{"dial op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"read op error", &net.OpError{Op: "read", Err: errors.New("reset")}, false},
		{"url wrapped timeout", &url.Error{Op: "Get", URL: "https://example.com", Err: timeoutErr{timeout: true}}, true},
		{"url wrapped plain", &url.Error{Op: "Get", URL: "https://example.com", Err: errors.New("boom")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRetry(tt.err))
		})
	}
}
