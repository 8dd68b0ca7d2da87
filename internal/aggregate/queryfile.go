// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/aihub/pkg/types"
)

// QueryFile is the on-disk form of a search and its ranked results, so a
// search can be reviewed later without calling the sources again.
type QueryFile struct {
	Query   QueryParams      `yaml:"query"`
	Results []types.Resource `yaml:"results"`
	Summary QuerySummary     `yaml:"summary"`
}

// QueryParams stores the request in a serializable form.
type QueryParams struct {
	Text       string   `yaml:"text"`
	MaxResults int      `yaml:"max_results"`
	Filters    []string `yaml:"filters,omitempty"`
	Page       int      `yaml:"page"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total        int           `yaml:"total"`
	SourceErrors []SourceError `yaml:"source_errors,omitempty"`
	Timestamp    time.Time     `yaml:"timestamp"`
}

// WriteQueryFile saves req and resp to a YAML file at path.
func WriteQueryFile(path string, req Request, resp Response) error {
	qf := QueryFile{
		Query: QueryParams{
			Text:       req.Query,
			MaxResults: resp.MaxResults,
			Filters:    req.Filters,
			Page:       resp.Page,
		},
		Results: resp.Results,
		Summary: QuerySummary{
			Total:        len(resp.Results),
			SourceErrors: resp.SourceErrors,
			Timestamp:    time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return errors.Wrap(err, "marshaling query file")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "writing query file")
}

// ReadQueryFile loads a previously saved query file.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading query file")
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, errors.Wrap(err, "parsing query file")
	}
	return &qf, nil
}

// Response rebuilds the envelope that was saved.
func (qf *QueryFile) Response() Response {
	return Response{
		Results:      qf.Results,
		Page:         qf.Query.Page,
		MaxResults:   qf.Query.MaxResults,
		SourceErrors: qf.Summary.SourceErrors,
	}
}
