// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/aihub/internal/logging"
	"github.com/pdiddy/aihub/internal/secrets"
	"github.com/pdiddy/aihub/pkg/types"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit_requests", 120)
	v.SetDefault("server.rate_limit_window", time.Minute)
	v.SetDefault("server.session_ttl", 7*24*time.Hour)
	v.SetDefault("server.secure_cookies", false)

	v.SetDefault("sources.timeout", 15*time.Second)
	v.SetDefault("sources.user_agent", "aihub/0.1")
	v.SetDefault("sources.max_results", 25)
	v.SetDefault("sources.reddit_subreddit", "datascience")
	v.SetDefault("sources.enrichment_workers", 4)
	v.SetDefault("sources.enrichment_rate", 10.0)
	v.SetDefault("sources.enrichment_timeout", 5*time.Second)
	v.SetDefault("sources.breaker_failures", 5)
	v.SetDefault("sources.breaker_cooldown", 30*time.Second)

	v.SetDefault("store.path", "aihub.db")

	v.SetDefault("chat.timeout", 60*time.Second)
	v.SetDefault("chat.model", "gpt-4o-mini")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("secrets_dir", ".secrets")
}

// configFrom reads every setting from v. Credentials missing from the
// config file and environment are filled from the secrets directory.
func configFrom(v *viper.Viper, log zerolog.Logger) (types.Config, error) {
	cfg := types.Config{
		Server: types.ServerConfig{
			Addr:              v.GetString("server.addr"),
			CORSOrigins:       v.GetStringSlice("server.cors_origins"),
			RateLimitRequests: v.GetInt("server.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("server.rate_limit_window"),
			SessionTTL:        v.GetDuration("server.session_ttl"),
			SecureCookies:     v.GetBool("server.secure_cookies"),
		},
		Sources: types.SourcesConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("sources.timeout"),
				UserAgent: v.GetString("sources.user_agent"),
			},
			MaxResults:         v.GetInt("sources.max_results"),
			GitHubToken:        v.GetString("sources.github_token"),
			RedditClientID:     v.GetString("sources.reddit_client_id"),
			RedditClientSecret: v.GetString("sources.reddit_client_secret"),
			RedditSubreddit:    v.GetString("sources.reddit_subreddit"),
			EnrichmentWorkers:  v.GetInt("sources.enrichment_workers"),
			EnrichmentRate:     v.GetFloat64("sources.enrichment_rate"),
			EnrichmentTimeout:  v.GetDuration("sources.enrichment_timeout"),
			BreakerFailures:    v.GetUint32("sources.breaker_failures"),
			BreakerCooldown:    v.GetDuration("sources.breaker_cooldown"),
		},
		Store: types.StoreConfig{
			Path: v.GetString("store.path"),
		},
		Chat: types.ChatConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("chat.timeout"),
				UserAgent: v.GetString("sources.user_agent"),
			},
			APIKey: v.GetString("chat.api_key"),
			Model:  v.GetString("chat.model"),
		},
		Logging: types.LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	s, err := secrets.Load(v.GetString("secrets_dir"), log)
	if err != nil {
		return types.Config{}, err
	}
	secrets.Apply(&cfg, s)
	return cfg, nil
}

// loadConfig builds the config and the logger it describes.
func loadConfig() (types.Config, zerolog.Logger, error) {
	boot := logging.New(types.LoggingConfig{Level: viper.GetString("logging.level"), Format: viper.GetString("logging.format")}, nil)
	cfg, err := configFrom(viper.GetViper(), boot)
	if err != nil {
		return types.Config{}, boot, err
	}
	return cfg, logging.New(cfg.Logging, nil), nil
}
