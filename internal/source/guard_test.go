// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/aihub/pkg/types"
)

func TestGuardPassesThrough(t *testing.T) {
	stub := &stubSource{id: Handbooks, results: []types.Resource{{Title: "a"}}}
	g := Guard(stub, BreakerSettings{}, zerolog.Nop())

	assert.Equal(t, Handbooks, g.ID())
	got, err := g.Fetch(context.Background(), "q", 5, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGuardOpensAfterConsecutiveFailures(t *testing.T) {
	stub := &stubSource{id: Blogs, err: &FetchError{Source: Blogs, Kind: KindTransport, Err: errors.New("refused")}}
	g := Guard(stub, BreakerSettings{Failures: 2, Cooldown: time.Hour}, zerolog.Nop())

	for range 2 {
		_, err := g.Fetch(context.Background(), "q", 5, 1)
		require.Error(t, err)
	}
	assert.Equal(t, 2, stub.calls)

	_, err := g.Fetch(context.Background(), "q", 5, 1)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindUnavailable, fe.Kind)
	assert.Equal(t, 2, stub.calls, "open breaker must not call the source")
}

func TestGuardIgnoresCallerCancellation(t *testing.T) {
	stub := &stubSource{id: Arxiv, err: context.Canceled}
	g := Guard(stub, BreakerSettings{Failures: 1, Cooldown: time.Hour}, zerolog.Nop())

	for range 3 {
		_, err := g.Fetch(context.Background(), "q", 5, 1)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, 3, stub.calls)
}

func TestGuardRecoversAfterCooldown(t *testing.T) {
	stub := &stubSource{id: Courses, err: errors.New("down")}
	g := Guard(stub, BreakerSettings{Failures: 1, Cooldown: 20 * time.Millisecond}, zerolog.Nop())

	_, err := g.Fetch(context.Background(), "q", 5, 1)
	require.Error(t, err)

	stub.err = nil
	stub.results = []types.Resource{{Title: "back"}}
	time.Sleep(50 * time.Millisecond)

	got, err := g.Fetch(context.Background(), "q", 5, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
