// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat relays a single user message to the OpenAI chat completions
// API and returns the assistant's reply.
package chat

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"github.com/pdiddy/aihub/internal/httputil"
	"github.com/pdiddy/aihub/pkg/types"
)

// openAIEndpoint is the chat completions URL. Tests point it at httptest.
var openAIEndpoint = "https://api.openai.com/v1/chat/completions"

const (
	DefaultModel = "gpt-4o-mini"
	systemPrompt = "You are a helpful AI assistant."
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("chat is not configured")

// Client talks to the chat completions API.
type Client struct {
	HTTP   *httputil.Client
	APIKey string
	Model  string
}

// New builds a Client from cfg.
func New(cfg types.ChatConfig, hc *httputil.Client) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{HTTP: hc, APIKey: cfg.APIKey, Model: model}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c != nil && c.APIKey != "" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Reply sends msg and returns the first choice's content.
func (c *Client) Reply(ctx context.Context, msg string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	body, err := json.Marshal(completionRequest{
		Model: c.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: msg},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "creating chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.HTTP.UserAgent != "" {
		req.Header.Set("User-Agent", c.HTTP.UserAgent)
	}

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "calling chat completions")
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return "", err
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", httputil.MarkDecode(err)
	}
	if len(out.Choices) == 0 {
		return "", httputil.MarkDecode(errors.New("no choices in completion"))
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
