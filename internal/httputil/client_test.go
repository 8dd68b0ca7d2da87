// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		want   bool
	}{
		{"429", http.StatusTooManyRequests, http.Header{}, true},
		{"403 exhausted", http.StatusForbidden, http.Header{"X-Ratelimit-Remaining": {"0"}}, true},
		{"403 retry-after", http.StatusForbidden, http.Header{"Retry-After": {"60"}}, true},
		{"403 plain", http.StatusForbidden, http.Header{}, false},
		{"500", http.StatusInternalServerError, http.Header{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: tt.header}
			assert.Equal(t, tt.want, IsRateLimited(resp))
		})
	}
}

func TestGetJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "aihub/test", r.Header.Get("User-Agent"))
		assert.Equal(t, "token abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"ok","count":3}`))
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client(), UserAgent: "aihub/test", Log: zerolog.Nop()}

	var got struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	err := c.GetJSON(context.Background(), ts.URL, map[string]string{"Authorization": "token abc"}, &got)
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestGetJSON_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("API rate limit exceeded"))
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client(), Log: zerolog.Nop()}

	var dst map[string]any
	err := c.GetJSON(context.Background(), ts.URL, nil, &dst)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.True(t, se.RateLimited)
	assert.Contains(t, se.Error(), "403")
	assert.Contains(t, se.Error(), "rate limit exceeded")
}

func TestGetJSON_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client(), Log: zerolog.Nop()}

	var dst map[string]any
	err := c.GetJSON(context.Background(), ts.URL, nil, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestSendDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client(), MaxRetries: 3, Log: zerolog.Nop()}
	req, err := c.NewRequest(context.Background(), ts.URL, nil)
	require.NoError(t, err)

	resp, err := c.Send(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.True(t, IsRateLimited(resp))
	assert.Equal(t, int32(1), calls.Load())
}
