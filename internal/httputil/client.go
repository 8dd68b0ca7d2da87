// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// maxErrorBody caps how much of an error response body is kept.
const maxErrorBody = 512

// ErrDecode marks errors caused by a malformed upstream payload.
var ErrDecode = errors.New("malformed upstream response")

// MarkDecode wraps a parse failure so errors.Is(err, ErrDecode) holds.
func MarkDecode(err error) error {
	return errors.Mark(errors.Wrap(err, "decoding response"), ErrDecode)
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
	// RateLimited is set for 429, and for 403 responses that carry an
	// exhausted rate-limit header.
	RateLimited bool
}

func (e *StatusError) Error() string {
	msg := "upstream returned HTTP " + strconv.Itoa(e.Code)
	if e.Body == "" {
		return msg
	}
	return msg + ": " + e.Body
}

// IsRateLimited reports whether resp signals upstream rate limiting.
func IsRateLimited(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.Header.Get("Retry-After") != ""
	}
	return false
}

// CheckStatus returns a *StatusError for non-2xx responses. The body is
// read (and truncated) but not closed.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Code:        resp.StatusCode,
		Body:        strings.TrimSpace(string(body)),
		RateLimited: IsRateLimited(resp),
	}
}

// Client bundles an http.Client with the request defaults every upstream
// call shares.
type Client struct {
	HTTP       *http.Client
	UserAgent  string
	MaxRetries int
	Log        zerolog.Logger
}

// NewRequest builds a GET request with the client's User-Agent and the
// given extra headers.
func (c *Client) NewRequest(ctx context.Context, url string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// Do sends req with 429 retry.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	return DoWithRetry(ctx, client, req, c.MaxRetries, c.Log)
}

// Send sends req once. A 429 comes back to the caller as-is.
func (c *Client) Send(req *http.Request) (*http.Response, error) {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

// GetJSON fetches url and decodes a 2xx JSON body into dst. Non-2xx
// responses yield a *StatusError.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, dst any) error {
	req, err := c.NewRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "GET %s", req.URL.Host)
	}
	defer resp.Body.Close()

	if err := CheckStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return MarkDecode(err)
	}
	return nil
}
