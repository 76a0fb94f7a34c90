// Package vk talks to the VK utilities API: link shortening, click
// statistics and country name lookups.
package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/keei051/kara-boy/core/config"
)

// GatewayError carries a short, user-presentable reason for a failed
// shortening call. The raw upstream detail stays in diagnostic logs only.
type GatewayError struct {
	Reason string
	cause  error
}

func (e *GatewayError) Error() string { return e.Reason }

// Unwrap exposes the underlying transport or API error for logging.
func (e *GatewayError) Unwrap() error { return e.cause }

// ShortLink is the successful result of a shortening call.
type ShortLink struct {
	ShortURL string
	StatsKey string
}

// Client is a VK API client sharing the application's outbound HTTP client.
type Client struct {
	httpClient *http.Client
	validator  *Validator
	baseURL    string
	token      string
	version    string
	timeout    time.Duration
	log        *zap.Logger
}

// NewClient builds a VK client from configuration. The HTTP client is shared
// with the rest of the process and passed in rather than constructed here.
func NewClient(cfg config.VKConfig, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		validator:  NewValidator(httpClient, cfg.Timeout()),
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		version:    cfg.Version,
		timeout:    cfg.Timeout(),
		log:        log,
	}
}

// Validator exposes the URL validator backed by the same HTTP client.
func (c *Client) Validator() *Validator { return c.validator }

type apiError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

type shortLinkEnvelope struct {
	Response struct {
		ShortURL string `json:"short_url"`
		Key      string `json:"key"`
	} `json:"response"`
	Error *apiError `json:"error"`
}

// Shorten validates rawURL again and asks VK for a short form plus the stats
// key. Every failure path returns a *GatewayError with a reason safe to show
// to the user.
func (c *Client) Shorten(ctx context.Context, rawURL string) (ShortLink, error) {
	if !c.validator.IsValid(ctx, rawURL) {
		return ShortLink{}, &GatewayError{Reason: "invalid or unreachable URL"}
	}

	params := url.Values{}
	params.Set("url", rawURL)

	var envelope shortLinkEnvelope
	if err := c.call(ctx, "utils.getShortLink", params, &envelope); err != nil {
		return ShortLink{}, &GatewayError{Reason: "shortening service is unavailable", cause: err}
	}
	if envelope.Error != nil {
		c.log.Error("vk api rejected shorten request",
			zap.Int("code", envelope.Error.Code),
			zap.String("message", envelope.Error.Message),
		)
		return ShortLink{}, &GatewayError{Reason: "shortening service rejected the link"}
	}
	if envelope.Response.ShortURL == "" || envelope.Response.Key == "" {
		return ShortLink{}, &GatewayError{Reason: "shortening service returned an unexpected reply"}
	}

	return ShortLink{
		ShortURL: envelope.Response.ShortURL,
		StatsKey: envelope.Response.Key,
	}, nil
}

// call performs a GET against a VK API method and decodes the JSON reply.
func (c *Client) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	params.Set("v", c.version)
	params.Set("access_token", c.token)
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, method, params.Encode())

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("vk api call failed",
			zap.String("method", method),
			zap.String("url", redactURL(endpoint)),
			zap.Error(err),
		)
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("vk api returned non-OK status",
			zap.String("method", method),
			zap.String("status", resp.Status),
		)
		return fmt.Errorf("call %s: status %s", method, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s reply: %w", method, err)
	}
	return nil
}

// sensitiveParams lists query parameters that never appear in logs.
var sensitiveParams = map[string]struct{}{
	"access_token": {},
	"token":        {},
	"key":          {},
	"secret":       {},
	"password":     {},
}

// redactURL masks credential-bearing query parameters before logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	for name := range q {
		if _, ok := sensitiveParams[name]; ok {
			q.Set(name, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
