// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/aihub/internal/source"
)

func TestPipelineEndToEnd(t *testing.T) {
	a := &fakeSource{id: "a", n: 4}
	b := &fakeSource{id: "b", n: 3, delay: time.Second}
	c := &fakeSource{id: "c", n: 6}
	p := NewPipeline(source.NewRegistry(a, b, c), 20*time.Millisecond, zerolog.Nop())

	resp, err := p.Run(context.Background(), Request{Query: "transformers", MaxResults: 10})
	require.NoError(t, err)

	assert.EqualValues(t, 4, a.limit.Load())
	assert.EqualValues(t, 3, b.limit.Load())
	assert.EqualValues(t, 3, c.limit.Load())

	require.Len(t, resp.Results, 10)
	for i, r := range resp.Results {
		require.True(t, r.Ranked(), "result %d unscored", i)
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Results[i-1].Score(), r.Score())
		}
	}
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.MaxResults)
	require.Len(t, resp.SourceErrors, 1)
	assert.Equal(t, "b", resp.SourceErrors[0].Source)
}

func TestPipelineFilters(t *testing.T) {
	gh := &fakeSource{id: source.GitHub, n: 2}
	blogs := &fakeSource{id: source.Blogs, n: 2}
	p := NewPipeline(source.NewRegistry(gh, blogs), time.Second, zerolog.Nop())

	resp, err := p.Run(context.Background(), Request{Query: "rag", MaxResults: 5, Filters: []string{"blogs"}})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
	assert.EqualValues(t, 0, gh.calls.Load())
	assert.EqualValues(t, 5, blogs.limit.Load())
}

func TestPipelineUnknownFilter(t *testing.T) {
	p := NewPipeline(source.NewRegistry(&fakeSource{id: source.GitHub}), time.Second, zerolog.Nop())
	_, err := p.Run(context.Background(), Request{Query: "rag", Filters: []string{"podcasts"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
	assert.True(t, errors.Is(err, source.ErrUnknownSource))
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
		want    Request
	}{
		{"defaults", Request{Query: "  llm "}, false, Request{Query: "llm", MaxResults: DefaultMaxResults, Page: 1}},
		{"blank query", Request{Query: "   "}, true, Request{}},
		{"too many", Request{Query: "x", MaxResults: MaxResultsCap + 1}, true, Request{}},
		{"negative max", Request{Query: "x", MaxResults: -1}, true, Request{}},
		{"negative page", Request{Query: "x", Page: -2}, true, Request{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.req)
		})
	}
}

func TestPipelineCancelledContextFails(t *testing.T) {
	p := NewPipeline(source.NewRegistry(&fakeSource{id: "a", n: 1, delay: time.Second}), time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, Request{Query: "llm"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineGroup(t *testing.T) {
	p := NewPipeline(source.NewRegistry(
		&fakeSource{id: source.GitHub, n: 2},
		&fakeSource{id: source.Arxiv, err: errBoom},
		&fakeSource{id: source.Blogs, n: 1},
	), time.Second, zerolog.Nop())

	g, err := p.Group(context.Background(), "llm", 3)
	require.NoError(t, err)
	assert.Len(t, g.Repositories, 2)
	assert.NotNil(t, g.Papers)
	assert.Empty(t, g.Papers)
	assert.Len(t, g.Blogs, 1)
	assert.Empty(t, g.Courses)
}

func TestPipelineSingleSurfacesFailure(t *testing.T) {
	p := NewPipeline(source.NewRegistry(
		&fakeSource{id: source.GitHub, n: 2},
		&fakeSource{id: source.Arxiv, err: errBoom},
	), time.Second, zerolog.Nop())

	resp, err := p.Single(context.Background(), source.GitHub, Request{Query: "llm", MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)

	_, err = p.Single(context.Background(), source.Arxiv, Request{Query: "llm"})
	assert.ErrorIs(t, err, errBoom)

	_, err = p.Single(context.Background(), source.Courses, Request{Query: "llm"})
	assert.ErrorIs(t, err, source.ErrUnknownSource)
}

func TestQueryFileRoundTrip(t *testing.T) {
	p := NewPipeline(source.NewRegistry(&fakeSource{id: "a", n: 3}), time.Second, zerolog.Nop())
	req := Request{Query: "diffusion", MaxResults: 3}
	resp, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "diffusion.yaml")
	require.NoError(t, WriteQueryFile(path, req, resp))

	qf, err := ReadQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, "diffusion", qf.Query.Text)
	assert.Equal(t, 3, qf.Summary.Total)
	loaded := qf.Response()
	require.Len(t, loaded.Results, 3)
	assert.Equal(t, resp.Results[0].URL, loaded.Results[0].URL)
	assert.InDelta(t, resp.Results[0].Score(), loaded.Results[0].Score(), 1e-9)
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Response{Page: 1, SourceErrors: []SourceError{{Source: "blogs", Error: "timeout"}}}, &buf)
	assert.Contains(t, buf.String(), "warning: source blogs failed")
	assert.Contains(t, buf.String(), "No results found.")

	buf.Reset()
	p := NewPipeline(source.NewRegistry(&fakeSource{id: "a", n: 2}), time.Second, zerolog.Nop())
	resp, err := p.Run(context.Background(), Request{Query: "llm", MaxResults: 2})
	require.NoError(t, err)
	FormatTable(resp, &buf)
	assert.Contains(t, buf.String(), "Rank")
	assert.Contains(t, buf.String(), "2 results (page 1)")
}
