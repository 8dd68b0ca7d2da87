// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/aihub/pkg/types"
)

func TestNewRegistersEverySource(t *testing.T) {
	reg, gh, err := New(types.SourcesConfig{GitHubToken: "t"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Known, reg.IDs())

	require.NotNil(t, gh)
	assert.Equal(t, "t", gh.Token)
	assert.Equal(t, defaultEnrichWorkers, gh.Workers)
	assert.Equal(t, DefaultEnrichTimeout, gh.SubTimeout)
	assert.Less(t, gh.SubTimeout, DefaultTimeout)
	assert.Equal(t, DefaultUserAgent, gh.Client.UserAgent)
	require.NotNil(t, gh.Limiter)

	src, ok := reg.Get(GitHub)
	require.True(t, ok)
	u, ok := src.(interface{ Unwrap() Source })
	require.True(t, ok, "registered sources are breaker-guarded")
	assert.Same(t, gh, u.Unwrap())
}

func TestNewEnrichmentTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		enrich  time.Duration
		want    time.Duration
	}{
		{"explicit", 15 * time.Second, 2 * time.Second, 2 * time.Second},
		{"default", 15 * time.Second, 0, DefaultEnrichTimeout},
		{"capped by source timeout", 3 * time.Second, 10 * time.Second, 3 * time.Second},
		{"default capped by source timeout", 2 * time.Second, 0, 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.SourcesConfig{EnrichmentTimeout: tt.enrich}
			cfg.Timeout = tt.timeout
			_, gh, err := New(cfg, zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, gh.SubTimeout)
		})
	}
}
