// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source adapts external providers (GitHub, arXiv, Coursera/edX,
// Reddit, a curated handbook list) to one fetch contract that returns
// normalized Resources.
//
// Adapters return an empty slice and nil error for "no results". Anything
// else that goes wrong comes back as a *FetchError so the aggregator can
// log it and carry on without that source.
package source

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/aihub/internal/httputil"
	"github.com/pdiddy/aihub/pkg/types"
)

// ID identifies a source. The values double as the filter names accepted by
// the HTTP API.
type ID string

const (
	GitHub    ID = "github"
	Arxiv     ID = "research_papers"
	Blogs     ID = "blogs"
	Courses   ID = "courses"
	Handbooks ID = "handbooks"
)

// Known lists every source in priority order. Quota remainders are handed
// out in this order.
var Known = []ID{GitHub, Arxiv, Blogs, Courses, Handbooks}

// ErrUnknownSource is returned when a filter names a source that does not exist.
var ErrUnknownSource = errors.New("unknown source")

// Source fetches resources from one provider.
type Source interface {
	ID() ID
	Type() types.ResourceType
	// Fetch returns at most limit resources for query. page is 1-based.
	Fetch(ctx context.Context, query string, limit, page int) ([]types.Resource, error)
}

// Kind classifies a FetchError.
type Kind string

const (
	KindTransport   Kind = "transport"
	KindStatus      Kind = "status"
	KindRateLimited Kind = "rate_limited"
	KindDecode      Kind = "decode"
	KindUnavailable Kind = "unavailable"
)

// FetchError is the failure half of the fetch contract.
type FetchError struct {
	Source ID
	Kind   Kind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	return string(e.Source) + ": " + string(e.Kind) + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is a rate-limit signal from a source.
func IsRateLimited(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindRateLimited
}

// classify wraps err into a *FetchError for source id.
func classify(id ID, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	out := &FetchError{Source: id, Kind: KindTransport, Err: err}
	var se *httputil.StatusError
	switch {
	case errors.As(err, &se):
		out.Status = se.Code
		out.Kind = KindStatus
		if se.RateLimited {
			out.Kind = KindRateLimited
		}
	case errors.Is(err, httputil.ErrDecode):
		out.Kind = KindDecode
	}
	return out
}

// normalizePage clamps page to 1 or more.
func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Registry holds the configured sources in priority order.
type Registry struct {
	order []ID
	byID  map[ID]Source
}

// NewRegistry indexes srcs. Registration order is irrelevant: IDs are
// always reported in Known order, with unknown IDs sorted after them.
func NewRegistry(srcs ...Source) *Registry {
	r := &Registry{byID: make(map[ID]Source, len(srcs))}
	for _, s := range srcs {
		if _, dup := r.byID[s.ID()]; !dup {
			r.order = append(r.order, s.ID())
		}
		r.byID[s.ID()] = s
	}
	rank := make(map[ID]int, len(Known))
	for i, id := range Known {
		rank[id] = i
	}
	sort.SliceStable(r.order, func(i, j int) bool {
		ri, iok := rank[r.order[i]]
		rj, jok := rank[r.order[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return r.order[i] < r.order[j]
		}
	})
	return r
}

// Get returns the source registered under id.
func (r *Registry) Get(id ID) (Source, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// IDs returns the registered source IDs in priority order.
func (r *Registry) IDs() []ID {
	return append([]ID(nil), r.order...)
}

// Select resolves a filter set to registered source IDs in priority order.
// An empty filter selects every source. Names outside the registry yield
// ErrUnknownSource.
func (r *Registry) Select(filters []string) ([]ID, error) {
	if len(filters) == 0 {
		return r.IDs(), nil
	}
	want := make(map[ID]bool, len(filters))
	for _, f := range filters {
		id := ID(f)
		if _, ok := r.byID[id]; !ok {
			return nil, errors.WithHintf(
				errors.Wrapf(ErrUnknownSource, "%q", f),
				"valid filters: %s", strings.Join(idStrings(r.order), ", "))
		}
		want[id] = true
	}
	var ids []ID
	for _, id := range r.order {
		if want[id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ParseFilters splits a comma-separated filter list, dropping blanks.
func ParseFilters(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func idStrings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
