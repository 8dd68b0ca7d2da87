// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/aihub/internal/metrics"
	"github.com/pdiddy/aihub/internal/source"
	"github.com/pdiddy/aihub/pkg/types"
)

// Outcome is what one source contributed to a gather: its resources, or
// the error that replaced them with an empty contribution.
type Outcome struct {
	Source    source.ID
	Resources []types.Resource
	Err       error
	Duration  time.Duration
}

// Aggregator fans a query out to the registered sources.
type Aggregator struct {
	Registry *source.Registry
	Log      zerolog.Logger
	// Timeout bounds each source call independently. Zero means no bound
	// beyond the caller's context.
	Timeout time.Duration
}

// Gather returns the concatenated contributions of every source with a
// positive quota. Failed sources contribute nothing; the result is never
// truncated or filtered.
func (a *Aggregator) Gather(ctx context.Context, query string, quotas Quota, page int) []types.Resource {
	var out []types.Resource
	for _, o := range a.GatherOutcomes(ctx, query, quotas, page) {
		out = append(out, o.Resources...)
	}
	if out == nil {
		out = []types.Resource{}
	}
	return out
}

// GatherOutcomes calls every source with a positive quota concurrently and
// waits for all of them. Outcomes come back in source priority order, one
// per source actually called.
func (a *Aggregator) GatherOutcomes(ctx context.Context, query string, quotas Quota, page int) []Outcome {
	ids := a.active(quotas)
	outcomes := make([]Outcome, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		src, _ := a.Registry.Get(id)
		g.Go(func() error {
			outcomes[i] = a.call(ctx, src, query, quotas[id], page)
			return nil
		})
	}
	g.Wait()
	return outcomes
}

// active lists the sources that will be called, in priority order.
func (a *Aggregator) active(quotas Quota) []source.ID {
	rank := make(map[source.ID]int)
	for i, id := range a.Registry.IDs() {
		rank[id] = i
	}

	var ids []source.ID
	for id, n := range quotas {
		if n <= 0 {
			continue
		}
		if _, ok := a.Registry.Get(id); !ok {
			a.Log.Warn().Str("source", string(id)).Msg("quota names an unregistered source, skipping")
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return rank[ids[i]] < rank[ids[j]] })
	return ids
}

// call runs one source fetch under its own timeout. Errors and panics are
// turned into an empty contribution.
func (a *Aggregator) call(ctx context.Context, src source.Source, query string, limit, page int) (o Outcome) {
	o.Source = src.ID()
	start := time.Now()

	callCtx := ctx
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			o.Resources = nil
			o.Err = errors.Newf("source %s panicked: %v", o.Source, r)
		}
		o.Duration = time.Since(start)
		a.observe(&o)
	}()

	res, err := src.Fetch(callCtx, query, limit, page)
	if err != nil {
		o.Err = err
		return o
	}
	o.Resources = res
	return o
}

func (a *Aggregator) observe(o *Outcome) {
	name := string(o.Source)
	metrics.SourceFetchDuration.WithLabelValues(name).Observe(o.Duration.Seconds())

	if o.Err == nil {
		metrics.SourceFetches.WithLabelValues(name, metrics.OutcomeSuccess).Inc()
		metrics.SourceResults.WithLabelValues(name).Add(float64(len(o.Resources)))
		return
	}

	outcome := metrics.OutcomeFailure
	var fe *source.FetchError
	if errors.As(o.Err, &fe) && fe.Kind == source.KindUnavailable {
		outcome = metrics.OutcomeRejected
	}
	metrics.SourceFetches.WithLabelValues(name, outcome).Inc()

	a.Log.Warn().
		Str("source", name).
		Err(o.Err).
		Dur("duration", o.Duration).
		Msg("source fetch failed, continuing without it")
}
