// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/pdiddy/aihub/internal/metrics"
	"github.com/pdiddy/aihub/internal/source"
	"github.com/pdiddy/aihub/pkg/types"
)

// Limits on a single request.
const (
	DefaultMaxResults = 25
	MaxResultsCap     = 100
)

// ErrInvalidRequest marks requests rejected before any source is called.
var ErrInvalidRequest = errors.New("invalid search request")

// Request is one ranked search.
type Request struct {
	Query      string
	MaxResults int
	// Filters restricts the participating sources; empty means all.
	Filters []string
	Page    int
}

// SourceError is a per-source failure reported alongside the results.
type SourceError struct {
	Source string `json:"source" yaml:"source"`
	Error  string `json:"error" yaml:"error"`
}

// Response is the envelope returned by Run.
type Response struct {
	Results      []types.Resource `json:"results" yaml:"results"`
	Page         int              `json:"page" yaml:"page"`
	MaxResults   int              `json:"max_results" yaml:"max_results"`
	SourceErrors []SourceError    `json:"source_errors,omitempty" yaml:"source_errors,omitempty"`
}

// Pipeline ties allocation, fan-out and ranking together.
type Pipeline struct {
	Aggregator *Aggregator
	Log        zerolog.Logger
}

// NewPipeline builds a pipeline over reg with a per-source timeout.
func NewPipeline(reg *source.Registry, timeout time.Duration, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		Aggregator: &Aggregator{Registry: reg, Log: log, Timeout: timeout},
		Log:        log,
	}
}

// Validate normalizes req in place and rejects unusable input.
func (req *Request) Validate() error {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return errors.WithHint(errors.Wrap(ErrInvalidRequest, "query is empty"),
			"provide a search string")
	}
	if req.MaxResults == 0 {
		req.MaxResults = DefaultMaxResults
	}
	if req.MaxResults < 1 || req.MaxResults > MaxResultsCap {
		return errors.Wrapf(ErrInvalidRequest, "max_results must be between 1 and %d, got %d",
			MaxResultsCap, req.MaxResults)
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Page < 1 {
		return errors.Wrapf(ErrInvalidRequest, "page must be at least 1, got %d", req.Page)
	}
	return nil
}

// Run allocates req.MaxResults across the selected sources, gathers from
// them concurrently and ranks the merged candidates. Source failures show
// up in SourceErrors; Run itself fails only for invalid input, a cancelled
// context, or an internal fault.
func (p *Pipeline) Run(ctx context.Context, req Request) (resp Response, err error) {
	if err := req.Validate(); err != nil {
		return Response{}, err
	}
	ids, err := p.Aggregator.Registry.Select(req.Filters)
	if err != nil {
		return Response{}, errors.Mark(err, ErrInvalidRequest)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			resp, err = Response{}, errors.Newf("search pipeline failed: %v", r)
		}
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()

	quotas := Allocate(req.MaxResults, ids)
	outcomes := p.Aggregator.GatherOutcomes(ctx, req.Query, quotas, req.Page)
	if err := ctx.Err(); err != nil {
		return Response{}, errors.Wrap(err, "search cancelled")
	}

	var candidates []types.Resource
	var failures []SourceError
	for _, o := range outcomes {
		if o.Err != nil {
			failures = append(failures, SourceError{Source: string(o.Source), Error: o.Err.Error()})
			continue
		}
		candidates = append(candidates, o.Resources...)
	}

	ranked := Rank(req.Query, candidates)
	p.Log.Debug().
		Str("query", req.Query).
		Int("candidates", len(candidates)).
		Int("failed_sources", len(failures)).
		Dur("duration", time.Since(start)).
		Msg("search complete")

	return Response{
		Results:      ranked,
		Page:         req.Page,
		MaxResults:   req.MaxResults,
		SourceErrors: failures,
	}, nil
}

// Grouped is the un-ranked, per-category view of one query.
type Grouped struct {
	Repositories []types.Resource `json:"repositories"`
	Papers       []types.Resource `json:"arxivPapers"`
	Courses      []types.Resource `json:"courses"`
	Handbooks    []types.Resource `json:"handbooks"`
	Blogs        []types.Resource `json:"blogs"`
}

// Group asks every registered source for up to limit results and returns
// them by category without ranking. Failed sources yield empty groups.
func (p *Pipeline) Group(ctx context.Context, query string, limit int) (Grouped, error) {
	req := Request{Query: query, MaxResults: limit}
	if err := req.Validate(); err != nil {
		return Grouped{}, err
	}

	quotas := make(Quota)
	for _, id := range p.Aggregator.Registry.IDs() {
		quotas[id] = req.MaxResults
	}

	g := Grouped{
		Repositories: []types.Resource{},
		Papers:       []types.Resource{},
		Courses:      []types.Resource{},
		Handbooks:    []types.Resource{},
		Blogs:        []types.Resource{},
	}
	for _, o := range p.Aggregator.GatherOutcomes(ctx, req.Query, quotas, 1) {
		if o.Err != nil {
			continue
		}
		switch o.Source {
		case source.GitHub:
			g.Repositories = append(g.Repositories, o.Resources...)
		case source.Arxiv:
			g.Papers = append(g.Papers, o.Resources...)
		case source.Courses:
			g.Courses = append(g.Courses, o.Resources...)
		case source.Handbooks:
			g.Handbooks = append(g.Handbooks, o.Resources...)
		case source.Blogs:
			g.Blogs = append(g.Blogs, o.Resources...)
		}
	}
	if err := ctx.Err(); err != nil {
		return Grouped{}, errors.Wrap(err, "search cancelled")
	}
	return g, nil
}

// Single queries one source directly. Unlike Run there are no siblings to
// fall back on, so a source failure is returned to the caller.
func (p *Pipeline) Single(ctx context.Context, id source.ID, req Request) (Response, error) {
	if err := req.Validate(); err != nil {
		return Response{}, err
	}
	src, ok := p.Aggregator.Registry.Get(id)
	if !ok {
		return Response{}, errors.Wrapf(source.ErrUnknownSource, "%q", id)
	}

	o := p.Aggregator.call(ctx, src, req.Query, req.MaxResults, req.Page)
	if o.Err != nil {
		return Response{}, o.Err
	}
	res := o.Resources
	if res == nil {
		res = []types.Resource{}
	}
	return Response{Results: res, Page: req.Page, MaxResults: req.MaxResults}, nil
}
