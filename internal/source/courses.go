// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/aihub/internal/httputil"
	"github.com/pdiddy/aihub/pkg/types"
)

// Catalog endpoints. Declared as vars so tests can substitute httptest servers.
var (
	courseraAPIBase = "https://api.coursera.org/api/courses.v1"
	edxAPIBase      = "https://www.edx.org/api/catalog/v1/courses"
)

const (
	courseraLearnURL      = "https://www.coursera.org/learn/"
	courseraDefaultThumb  = "https://www.coursera.org/default-thumbnail.jpg"
	edxDefaultThumb       = "https://www.edx.org/default-thumbnail.jpg"
	courseUnknownWorkload = "Unknown"
	courseraFields        = "photoUrl,description,workload"
)

// CourseSource merges the Coursera and edX catalogs. The limit is split
// between them, Coursera first. One catalog failing still returns the
// other's courses; only both failing is an error.
type CourseSource struct {
	Client *httputil.Client
	Log    zerolog.Logger
}

func (s *CourseSource) ID() ID                   { return Courses }
func (s *CourseSource) Type() types.ResourceType { return types.ResourceCourse }

func (s *CourseSource) Fetch(ctx context.Context, query string, limit, page int) ([]types.Resource, error) {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return []types.Resource{}, nil
	}
	page = normalizePage(page)

	courseraLimit := limit - limit/2
	edxLimit := limit / 2

	var (
		coursera, edx       []types.Resource
		courseraErr, edxErr error
		g                   errgroup.Group
	)
	g.Go(func() error {
		coursera, courseraErr = s.fetchCoursera(ctx, query, courseraLimit, page)
		return nil
	})
	if edxLimit > 0 {
		g.Go(func() error {
			edx, edxErr = s.fetchEdx(ctx, query, edxLimit, page)
			return nil
		})
	}
	g.Wait()

	switch {
	case courseraErr != nil && (edxErr != nil || edxLimit == 0):
		return nil, classify(Courses, errors.CombineErrors(courseraErr, edxErr))
	case courseraErr != nil:
		s.Log.Warn().Err(courseraErr).Msg("coursera catalog failed")
	case edxErr != nil:
		s.Log.Warn().Err(edxErr).Msg("edx catalog failed")
	}

	out := make([]types.Resource, 0, len(coursera)+len(edx))
	out = append(out, coursera...)
	out = append(out, edx...)
	return out, nil
}

func (s *CourseSource) fetchCoursera(ctx context.Context, query string, limit, page int) ([]types.Resource, error) {
	params := url.Values{
		"q":      {"search"},
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"start":  {strconv.Itoa((page - 1) * limit)},
		"fields": {courseraFields},
	}
	var cr courseraResponse
	if err := s.Client.GetJSON(ctx, courseraAPIBase+"?"+params.Encode(), nil, &cr); err != nil {
		return nil, errors.Wrap(err, "coursera")
	}

	out := make([]types.Resource, 0, len(cr.Elements))
	for _, c := range cr.Elements {
		if len(out) == limit {
			break
		}
		thumb := c.PhotoURL
		if thumb == "" {
			thumb = courseraDefaultThumb
		}
		workload := c.Workload
		if workload == "" {
			workload = courseUnknownWorkload
		}
		r := types.Resource{
			Type:   types.ResourceCourse,
			Source: string(Courses),
			Title:  c.Name,
			Body:   c.Description,
			URL:    courseraLearnURL + c.Slug,
		}
		r.SetExtra(types.ExtraThumbnail, thumb)
		r.SetExtra(types.ExtraPlatform, "Coursera")
		r.SetExtra(types.ExtraDuration, workload)
		out = append(out, r)
	}
	return out, nil
}

func (s *CourseSource) fetchEdx(ctx context.Context, query string, limit, page int) ([]types.Resource, error) {
	params := url.Values{
		"search_query": {query},
		"limit":        {strconv.Itoa(limit)},
		"offset":       {strconv.Itoa((page - 1) * limit)},
	}
	var er edxResponse
	if err := s.Client.GetJSON(ctx, edxAPIBase+"?"+params.Encode(), nil, &er); err != nil {
		return nil, errors.Wrap(err, "edx")
	}

	out := make([]types.Resource, 0, len(er.Results))
	for _, c := range er.Results {
		if len(out) == limit {
			break
		}
		thumb := edxDefaultThumb
		if c.Image != nil && c.Image.Src != "" {
			thumb = c.Image.Src
		}
		effort := c.Effort
		if effort == "" {
			effort = courseUnknownWorkload
		}
		r := types.Resource{
			Type:   types.ResourceCourse,
			Source: string(Courses),
			Title:  c.Title,
			Body:   c.FullDescription,
			URL:    c.MarketingURL,
		}
		r.SetExtra(types.ExtraThumbnail, thumb)
		r.SetExtra(types.ExtraPlatform, "edX")
		r.SetExtra(types.ExtraDuration, effort)
		out = append(out, r)
	}
	return out, nil
}

// Coursera and edX catalog JSON structures.
type courseraResponse struct {
	Elements []courseraCourse `json:"elements"`
}

type courseraCourse struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	PhotoURL    string `json:"photoUrl"`
	Description string `json:"description"`
	Workload    string `json:"workload"`
}

type edxResponse struct {
	Results []edxCourse `json:"results"`
}

type edxCourse struct {
	Title           string    `json:"title"`
	MarketingURL    string    `json:"marketing_url"`
	FullDescription string    `json:"full_description"`
	Effort          string    `json:"effort"`
	Image           *edxImage `json:"image"`
}

type edxImage struct {
	Src string `json:"src"`
}
