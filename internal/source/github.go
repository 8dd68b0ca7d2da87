// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pdiddy/aihub/internal/httputil"
	"github.com/pdiddy/aihub/internal/metrics"
	"github.com/pdiddy/aihub/pkg/types"
)

// githubAPIBase is the GitHub REST root. Declared as a var so tests can
// substitute an httptest server.
var githubAPIBase = "https://api.github.com"

const (
	topContributors       = 3
	defaultEnrichWorkers  = 4
	unknownLanguage       = "Unknown"
	githubAcceptMediaType = "application/vnd.github.v3+json"
)

// GitHubSource searches repositories and enriches each hit with its top
// contributors.
type GitHubSource struct {
	Client *httputil.Client
	Token  string

	// Workers bounds concurrent contributor sub-fetches.
	Workers int
	// Limiter paces contributor sub-fetches; nil means unpaced.
	Limiter *rate.Limiter
	// SubTimeout bounds each contributor sub-fetch independently of the
	// whole Fetch; zero means no extra bound.
	SubTimeout time.Duration

	Log zerolog.Logger
}

func (s *GitHubSource) ID() ID                   { return GitHub }
func (s *GitHubSource) Type() types.ResourceType { return types.ResourceCodeRepository }

// Fetch searches repositories sorted by stars, then enriches the hits.
// Any 403 from the search endpoint is reported as rate limiting, which is
// what GitHub uses it for on this route.
func (s *GitHubSource) Fetch(ctx context.Context, query string, limit, page int) ([]types.Resource, error) {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return []types.Resource{}, nil
	}
	page = normalizePage(page)

	params := url.Values{
		"q":        {query},
		"sort":     {"stars"},
		"order":    {"desc"},
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(limit)},
	}

	var sr githubSearchResponse
	err := s.Client.GetJSON(ctx, githubAPIBase+"/search/repositories?"+params.Encode(), s.headers(), &sr)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.Code == http.StatusForbidden {
			se.RateLimited = true
		}
		return nil, classify(GitHub, err)
	}

	results := make([]types.Resource, 0, len(sr.Items))
	for _, repo := range sr.Items {
		if len(results) == limit {
			break
		}
		results = append(results, repo.resource())
	}

	s.enrich(ctx, results)
	return results, nil
}

// enrich attaches top contributors to every repository. A failed lookup
// leaves that repository with an empty list. The first rate-limit signal
// stops further lookups; repositories not yet looked up keep empty lists.
func (s *GitHubSource) enrich(ctx context.Context, repos []types.Resource) {
	for i := range repos {
		repos[i].SetExtra(types.ExtraContributors, []types.Contributor{})
	}

	workers := s.Workers
	if workers <= 0 {
		workers = defaultEnrichWorkers
	}

	var stopped atomic.Bool
	var g errgroup.Group
	g.SetLimit(workers)

	for i := range repos {
		owner, _ := repos[i].Extra[types.ExtraOwner].(string)
		name := repos[i].Title
		if stopped.Load() {
			metrics.EnrichmentFetches.WithLabelValues(metrics.OutcomeSkipped).Inc()
			continue
		}
		g.Go(func() error {
			if stopped.Load() {
				metrics.EnrichmentFetches.WithLabelValues(metrics.OutcomeSkipped).Inc()
				return nil
			}
			if s.Limiter != nil {
				if err := s.Limiter.Wait(ctx); err != nil {
					metrics.EnrichmentFetches.WithLabelValues(metrics.OutcomeSkipped).Inc()
					return nil
				}
			}

			subCtx := ctx
			if s.SubTimeout > 0 {
				var cancel context.CancelFunc
				subCtx, cancel = context.WithTimeout(ctx, s.SubTimeout)
				defer cancel()
			}

			contributors, err := s.Contributors(subCtx, owner, name, topContributors)
			switch {
			case IsRateLimited(err):
				if !stopped.Swap(true) {
					s.Log.Warn().Str("repo", owner+"/"+name).Msg("github rate limit reached, skipping remaining contributor lookups")
				}
				metrics.EnrichmentFetches.WithLabelValues(metrics.OutcomeRejected).Inc()
			case err != nil:
				s.Log.Debug().Str("repo", owner+"/"+name).Err(err).Msg("contributor lookup failed")
				metrics.EnrichmentFetches.WithLabelValues(metrics.OutcomeFailure).Inc()
			default:
				repos[i].Extra[types.ExtraContributors] = contributors
				metrics.EnrichmentFetches.WithLabelValues(metrics.OutcomeSuccess).Inc()
			}
			return nil
		})
	}
	g.Wait()
}

// Contributors returns up to n top contributors of owner/repo. A 204 (empty
// repository) yields an empty list. 403 and 429 are reported as rate limiting
// straight away, without a retry, so enrichment can stop on the first one.
func (s *GitHubSource) Contributors(ctx context.Context, owner, repo string, n int) ([]types.Contributor, error) {
	u := githubAPIBase + "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) +
		"/contributors?per_page=" + strconv.Itoa(n)

	req, err := s.Client.NewRequest(ctx, u, s.headers())
	if err != nil {
		return nil, classify(GitHub, err)
	}
	resp, err := s.Client.Send(req)
	if err != nil {
		return nil, classify(GitHub, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return []types.Contributor{}, nil
	case http.StatusForbidden, http.StatusTooManyRequests:
		return nil, &FetchError{Source: GitHub, Kind: KindRateLimited, Status: resp.StatusCode,
			Err: errors.Newf("contributors for %s/%s: HTTP %d", owner, repo, resp.StatusCode)}
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, classify(GitHub, err)
	}

	var raw []githubContributor
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, classify(GitHub, httputil.MarkDecode(err))
	}

	out := make([]types.Contributor, 0, len(raw))
	for _, c := range raw {
		login := c.Login
		if login == "" {
			login = "Unknown"
		}
		out = append(out, types.Contributor{
			Username:      login,
			Contributions: c.Contributions,
			AvatarURL:     c.AvatarURL,
		})
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// RepoDetails is the expanded view of one repository.
type RepoDetails struct {
	Repo         map[string]any      `json:"repo"`
	Readme       string              `json:"readme"`
	Contributors []types.Contributor `json:"contributors"`
	Languages    []string            `json:"languages"`
}

// Details fetches repository metadata, then the README, contributors and
// languages concurrently. Only the metadata call is fatal; the other three
// degrade to empty values.
func (s *GitHubSource) Details(ctx context.Context, owner, repo string) (RepoDetails, error) {
	base := githubAPIBase + "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)

	var out RepoDetails
	if err := s.Client.GetJSON(ctx, base, s.headers(), &out.Repo); err != nil {
		return RepoDetails{}, classify(GitHub, errors.Wrapf(err, "fetching %s/%s", owner, repo))
	}
	out.Contributors = []types.Contributor{}
	out.Languages = []string{}

	var g errgroup.Group
	g.Go(func() error {
		var readme struct {
			Content  string `json:"content"`
			Encoding string `json:"encoding"`
		}
		if err := s.Client.GetJSON(ctx, base+"/readme", s.headers(), &readme); err != nil {
			return nil
		}
		out.Readme = decodeReadme(readme.Content, readme.Encoding)
		return nil
	})
	g.Go(func() error {
		if c, err := s.Contributors(ctx, owner, repo, 30); err == nil {
			out.Contributors = c
		}
		return nil
	})
	g.Go(func() error {
		var langs map[string]int
		if err := s.Client.GetJSON(ctx, base+"/languages", s.headers(), &langs); err != nil {
			return nil
		}
		out.Languages = sortLanguages(langs)
		return nil
	})
	g.Wait()
	return out, nil
}

func (s *GitHubSource) headers() map[string]string {
	h := map[string]string{"Accept": githubAcceptMediaType}
	if s.Token != "" {
		h["Authorization"] = "token " + s.Token
	}
	return h
}

// decodeReadme turns GitHub's base64 README payload into text, falling back
// to the raw content when it is not base64.
func decodeReadme(content, encoding string) string {
	if encoding != "base64" {
		return content
	}
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
	if err != nil {
		return content
	}
	return string(data)
}

// sortLanguages orders languages by byte count, largest first.
func sortLanguages(langs map[string]int) []string {
	out := make([]string, 0, len(langs))
	for l := range langs {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if langs[out[i]] != langs[out[j]] {
			return langs[out[i]] > langs[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// GitHub API JSON structures.
type githubSearchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []githubRepo `json:"items"`
}

type githubRepo struct {
	Name        string  `json:"name"`
	FullName    string  `json:"full_name"`
	Description *string `json:"description"`
	HTMLURL     string  `json:"html_url"`
	Stars       int     `json:"stargazers_count"`
	Language    *string `json:"language"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (r githubRepo) resource() types.Resource {
	var desc string
	if r.Description != nil {
		desc = *r.Description
	}
	lang := unknownLanguage
	if r.Language != nil && *r.Language != "" {
		lang = *r.Language
	}
	res := types.Resource{
		Type:   types.ResourceCodeRepository,
		Source: string(GitHub),
		Title:  r.Name,
		Body:   desc,
		URL:    r.HTMLURL,
	}
	res.SetExtra(types.ExtraOwner, r.Owner.Login)
	res.SetExtra(types.ExtraFullName, r.FullName)
	res.SetExtra(types.ExtraStars, r.Stars)
	res.SetExtra(types.ExtraLanguage, lang)
	return res
}

type githubContributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	AvatarURL     string `json:"avatar_url"`
}
