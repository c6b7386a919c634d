// Package rest implements the service.Service interface over the task backend's JSON REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

const (
	// HeaderAuthToken carries the stored auth token on every non-auth route.
	HeaderAuthToken = "x-auth-token"

	// HeaderPushToken carries the device push token on push registration calls.
	HeaderPushToken = "x-fcm-token"

	contentTypeJSON = "application/json"
)

// authRouteMarkers identify sign-in and sign-up paths, matched case-insensitively.
var authRouteMarkers = []string{"signin", "signup"}

// Options configures a Client.
type Options struct {
	// HTTPClient defaults to a client with no timeout.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Timeout bounds a single request. Zero means only the caller's context applies.
	Timeout time.Duration
}

// Client sends requests to the backend, one attempt per call.
type Client struct {
	baseURL string
	tokens  oauth2.TokenSource
	http    *http.Client
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a Client for baseURL that reads the auth token from tokens on every request.
func New(baseURL string, tokens oauth2.TokenSource, opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    opts.HTTPClient,
		logger:  opts.Logger,
		timeout: opts.Timeout,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// IsAuthRoute reports whether path is a sign-in or sign-up route.
func IsAuthRoute(path string) bool {
	lower := strings.ToLower(path)
	for _, marker := range authRouteMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Headers builds the request headers for path.
//
// Content-Type is always JSON. Extra headers are merged only when they carry
// a push token. Non-auth routes always get x-auth-token, with an empty value
// when no token is stored; auth routes never do.
func (c *Client) Headers(path string, extra http.Header) http.Header {
	h := http.Header{}
	h.Set("Content-Type", contentTypeJSON)

	if extra.Get(HeaderPushToken) != "" {
		for k, vs := range extra {
			h[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
		}
	}

	if !IsAuthRoute(path) {
		h.Set(HeaderAuthToken, c.currentToken())
	}
	return h
}

func (c *Client) currentToken() string {
	if c.tokens == nil {
		return ""
	}
	tok, err := c.tokens.Token()
	if err != nil || tok == nil {
		c.logger.Warn("no API token available", "error", err)
		return ""
	}
	return tok.AccessToken
}

// Send issues method on path with body encoded as JSON, and decodes the
// response into out when out is non-nil.
func (c *Client) Send(ctx context.Context, method, path string, body any, extra http.Header, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &UnknownError{Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &UnknownError{Err: err}
	}
	req.Header = c.Headers(path, extra)

	c.logger.Debug("api request", "method", method, "path", path, "auth_route", IsAuthRoute(path))

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api transport error", "method", method, "path", path, "error", err)
		return &TransportError{Err: err}
	}
	defer res.Body.Close()

	if err := googleapi.CheckResponse(res); err != nil {
		berr := newBackendError(err)
		c.logger.Debug("api backend error", "method", method, "path", path, "status", berr.StatusCode, "message", berr.Msg)
		return berr
	}

	if out == nil {
		io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &UnknownError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
