package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// outbound network requests.
type HTTPConfig struct {
	// Timeout bounds a single outbound call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent upstream (e.g. "aihub/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourcesConfig holds settings for the source adapters and the fan-out.
// Credentials are read-only after startup.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the default total result budget per search (default 25).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// GitHubToken authenticates repository search and contributor lookups.
	GitHubToken string `json:"github_token,omitempty" yaml:"github_token,omitempty"`

	// RedditClientID and RedditClientSecret authenticate app-only OAuth.
	RedditClientID     string `json:"reddit_client_id,omitempty" yaml:"reddit_client_id,omitempty"`
	RedditClientSecret string `json:"reddit_client_secret,omitempty" yaml:"reddit_client_secret,omitempty"`

	// RedditSubreddit is the community searched for blog posts (default "datascience").
	RedditSubreddit string `json:"reddit_subreddit" yaml:"reddit_subreddit"`

	// EnrichmentWorkers bounds concurrent contributor sub-fetches (default 4).
	EnrichmentWorkers int `json:"enrichment_workers" yaml:"enrichment_workers"`

	// EnrichmentRate is the maximum contributor sub-fetches per second (default 10).
	EnrichmentRate float64 `json:"enrichment_rate" yaml:"enrichment_rate"`

	// EnrichmentTimeout bounds each contributor sub-fetch on its own, inside
	// the repository source's Timeout (default 5s).
	EnrichmentTimeout time.Duration `json:"enrichment_timeout" yaml:"enrichment_timeout"`

	// BreakerFailures is the consecutive failure count that opens a
	// source's circuit breaker (default 5).
	BreakerFailures uint32 `json:"breaker_failures" yaml:"breaker_failures"`

	// BreakerCooldown is how long an open breaker rejects calls (default 30s).
	BreakerCooldown time.Duration `json:"breaker_cooldown" yaml:"breaker_cooldown"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr"`

	// CORSOrigins lists allowed origins (default ["*"]).
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP (default 120/min).
	RateLimitRequests int           `json:"rate_limit_requests" yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `json:"rate_limit_window" yaml:"rate_limit_window"`

	// SessionTTL is the lifetime of a login session (default 7 days).
	SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl"`

	// SecureCookies sets the Secure attribute on session cookies.
	SecureCookies bool `json:"secure_cookies" yaml:"secure_cookies"`
}

// StoreConfig holds settings for the account/bookmark/upload database.
type StoreConfig struct {
	// Path is the SQLite database file (default "aihub.db").
	Path string `json:"path" yaml:"path"`
}

// ChatConfig holds settings for the chat passthrough.
type ChatConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the OpenAI API key. Chat is disabled when empty.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model is the chat model identifier (default "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is json or console (default json).
	Format string `json:"format" yaml:"format"`
}

// Config groups all component configurations. It is built once at startup
// and passed by value into constructors.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Sources SourcesConfig `json:"sources" yaml:"sources"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Chat    ChatConfig    `json:"chat" yaml:"chat"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}
