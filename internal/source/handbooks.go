// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	_ "embed"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/aihub/pkg/types"
)

//go:embed handbooks.yaml
var defaultHandbooks []byte

// Handbook is one entry of the curated handbook catalog.
type Handbook struct {
	Title           string `yaml:"title"`
	URL             string `yaml:"url"`
	Thumbnail       string `yaml:"thumbnail"`
	Description     string `yaml:"description"`
	Platform        string `yaml:"platform"`
	Author          string `yaml:"author"`
	PublicationYear string `yaml:"publication_year"`
}

// HandbookSource serves a static catalog, matched by case-insensitive
// substring on title or description.
type HandbookSource struct {
	Catalog []Handbook
}

// LoadHandbooks parses a YAML catalog. An empty path loads the built-in list.
func LoadHandbooks(path string) ([]Handbook, error) {
	data := defaultHandbooks
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, errors.Wrap(err, "reading handbook catalog")
		}
	}
	var books []Handbook
	if err := yaml.Unmarshal(data, &books); err != nil {
		return nil, errors.Wrap(err, "parsing handbook catalog")
	}
	return books, nil
}

func (s *HandbookSource) ID() ID                   { return Handbooks }
func (s *HandbookSource) Type() types.ResourceType { return types.ResourceHandbook }

// Fetch filters the catalog and returns the requested page of matches.
func (s *HandbookSource) Fetch(ctx context.Context, query string, limit, page int) ([]types.Resource, error) {
	if limit <= 0 {
		return []types.Resource{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, classify(Handbooks, err)
	}
	page = normalizePage(page)

	q := strings.ToLower(strings.TrimSpace(query))
	var matches []Handbook
	for _, b := range s.Catalog {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Description), q) {
			matches = append(matches, b)
		}
	}

	start := (page - 1) * limit
	if start >= len(matches) {
		return []types.Resource{}, nil
	}
	end := min(start+limit, len(matches))

	out := make([]types.Resource, 0, end-start)
	for _, b := range matches[start:end] {
		r := types.Resource{
			Type:   types.ResourceHandbook,
			Source: string(Handbooks),
			Title:  b.Title,
			Body:   b.Description,
			URL:    b.URL,
		}
		r.SetExtra(types.ExtraThumbnail, b.Thumbnail)
		r.SetExtra(types.ExtraPlatform, b.Platform)
		r.SetExtra(types.ExtraAuthors, splitAuthors(b.Author))
		r.SetExtra(types.ExtraPublicationYear, b.PublicationYear)
		out = append(out, r)
	}
	return out, nil
}

// splitAuthors turns the catalog's comma-separated author line into the
// []string shape papers use.
func splitAuthors(line string) []string {
	out := []string{}
	for _, a := range strings.Split(line, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
