// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/aihub/internal/httputil"
	"github.com/pdiddy/aihub/pkg/types"
)

// Defaults applied by New when the config leaves a field zero.
const (
	DefaultTimeout        = 15 * time.Second
	DefaultEnrichmentRate = 10.0
	DefaultEnrichTimeout  = 5 * time.Second
	DefaultUserAgent      = "aihub/0.1"
)

// New builds the registry of every source from cfg, each wrapped in a
// circuit breaker. The unguarded GitHub source is returned as well for the
// repository details endpoint.
func New(cfg types.SourcesConfig, log zerolog.Logger) (*Registry, *GitHubSource, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.EnrichmentWorkers <= 0 {
		cfg.EnrichmentWorkers = defaultEnrichWorkers
	}
	if cfg.EnrichmentRate <= 0 {
		cfg.EnrichmentRate = DefaultEnrichmentRate
	}
	if cfg.EnrichmentTimeout <= 0 || cfg.EnrichmentTimeout > cfg.Timeout {
		cfg.EnrichmentTimeout = min(DefaultEnrichTimeout, cfg.Timeout)
	}

	client := &httputil.Client{
		HTTP:       &http.Client{},
		UserAgent:  cfg.UserAgent,
		MaxRetries: 1,
		Log:        log,
	}

	books, err := LoadHandbooks("")
	if err != nil {
		return nil, nil, err
	}

	gh := &GitHubSource{
		Client:     client,
		Token:      cfg.GitHubToken,
		Workers:    cfg.EnrichmentWorkers,
		Limiter:    rate.NewLimiter(rate.Limit(cfg.EnrichmentRate), cfg.EnrichmentWorkers),
		SubTimeout: cfg.EnrichmentTimeout,
		Log:        log.With().Str("source", string(GitHub)).Logger(),
	}
	if cfg.GitHubToken == "" {
		log.Warn().Msg("no GitHub token configured, repository search runs unauthenticated")
	}

	set := BreakerSettings{Failures: cfg.BreakerFailures, Cooldown: cfg.BreakerCooldown}
	reg := NewRegistry(
		Guard(gh, set, log),
		Guard(&ArxivSource{Client: client}, set, log),
		Guard(&RedditSource{
			Client:       client,
			ClientID:     cfg.RedditClientID,
			ClientSecret: cfg.RedditClientSecret,
			Subreddit:    cfg.RedditSubreddit,
		}, set, log),
		Guard(&CourseSource{Client: client, Log: log.With().Str("source", string(Courses)).Logger()}, set, log),
		Guard(&HandbookSource{Catalog: books}, set, log),
	)
	return reg, gh, nil
}
