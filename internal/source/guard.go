// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pdiddy/aihub/internal/metrics"
	"github.com/pdiddy/aihub/pkg/types"
)

const (
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second
)

// BreakerSettings tunes a Guard.
type BreakerSettings struct {
	// Failures is the consecutive failure count that opens the breaker.
	Failures uint32
	// Cooldown is how long the open breaker rejects calls before probing.
	Cooldown time.Duration
}

// guarded wraps a Source in a circuit breaker. While the breaker is open
// Fetch fails fast with KindUnavailable instead of calling the provider.
type guarded struct {
	Source
	cb  *gobreaker.CircuitBreaker[[]types.Resource]
	log zerolog.Logger
}

// Guard decorates src with a per-source circuit breaker.
func Guard(src Source, set BreakerSettings, log zerolog.Logger) Source {
	if set.Failures == 0 {
		set.Failures = defaultBreakerFailures
	}
	if set.Cooldown <= 0 {
		set.Cooldown = defaultBreakerCooldown
	}
	name := string(src.ID())
	metrics.BreakerState.WithLabelValues(name).Set(stateValue(gobreaker.StateClosed))

	g := &guarded{Source: src, log: log.With().Str("source", name).Logger()}
	g.cb = gobreaker.NewCircuitBreaker[[]types.Resource](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     set.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= set.Failures
		},
		// A caller hanging up says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
			g.log.Info().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return g
}

func (g *guarded) Fetch(ctx context.Context, query string, limit, page int) ([]types.Resource, error) {
	out, err := g.cb.Execute(func() ([]types.Resource, error) {
		return g.Source.Fetch(ctx, query, limit, page)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &FetchError{Source: g.ID(), Kind: KindUnavailable, Err: err}
	}
	return out, err
}

// Unwrap returns the decorated source.
func (g *guarded) Unwrap() Source { return g.Source }

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
