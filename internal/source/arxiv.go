// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/xml"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/aihub/internal/httputil"
	"github.com/pdiddy/aihub/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv Atom API for preprints.
type ArxivSource struct {
	Client *httputil.Client
}

func (s *ArxivSource) ID() ID                   { return Arxiv }
func (s *ArxivSource) Type() types.ResourceType { return types.ResourcePaper }

// Fetch pages through arXiv results with start=(page-1)*limit.
func (s *ArxivSource) Fetch(ctx context.Context, query string, limit, page int) ([]types.Resource, error) {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return []types.Resource{}, nil
	}
	page = normalizePage(page)

	params := url.Values{
		"search_query": {buildArxivQuery(query)},
		"start":        {strconv.Itoa((page - 1) * limit)},
		"max_results":  {strconv.Itoa(limit)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	req, err := s.Client.NewRequest(ctx, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, classify(Arxiv, err)
	}
	resp, err := s.Client.Do(ctx, req)
	if err != nil {
		return nil, classify(Arxiv, errors.Wrap(err, "arXiv API request"))
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, classify(Arxiv, err)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, classify(Arxiv, httputil.MarkDecode(err))
	}

	results := make([]types.Resource, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		if len(results) == limit {
			break
		}
		r := types.Resource{
			Type:   types.ResourcePaper,
			Source: string(Arxiv),
			Title:  collapseSpace(entry.Title),
			Body:   collapseSpace(entry.Summary),
			URL:    strings.TrimSpace(entry.ID),
		}
		authors := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			authors = append(authors, strings.TrimSpace(a.Name))
		}
		r.SetExtra(types.ExtraAuthors, authors)
		r.SetExtra(types.ExtraPublishedDate, strings.TrimSpace(entry.Published))
		if id := extractArxivID(entry.ID); id != "" {
			r.SetExtra("arxiv_id", id)
		}
		results = append(results, r)
	}
	return results, nil
}

// buildArxivQuery searches all fields for every term of the free text.
func buildArxivQuery(q string) string {
	return "all:" + strings.Join(strings.Fields(q), " ")
}

// collapseSpace trims and folds the line breaks arXiv puts inside titles
// and abstracts.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
