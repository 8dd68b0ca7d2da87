// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/aihub/pkg/types"
)

const sampleArxivSearchXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v1</id>
    <title>Attention Is All
      You Need</title>
    <summary>  We propose a new architecture based solely on attention mechanisms.
    </summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1810.04805v2</id>
    <title>BERT: Pre-training of Deep Bidirectional Transformers</title>
    <summary>We introduce BERT.</summary>
    <published>2018-10-11T00:00:00Z</published>
    <author><name>Jacob Devlin</name></author>
  </entry>
</feed>`

func withArxivBase(t *testing.T, url string) {
	t.Helper()
	old := arxivAPIBase
	arxivAPIBase = url
	t.Cleanup(func() { arxivAPIBase = old })
}

func TestArxivFetch(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sampleArxivSearchXML)
	}))
	defer ts.Close()
	withArxivBase(t, ts.URL)

	s := &ArxivSource{Client: testClient(ts)}
	results, err := s.Fetch(context.Background(), "attention  transformers", 5, 3)
	if err != nil {
		t.Fatalf("ArxivSource.Fetch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	for _, want := range []string{"start=10", "max_results=5", "search_query=all%3Aattention+transformers"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}

	r := results[0]
	if r.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.Body != "We propose a new architecture based solely on attention mechanisms." {
		t.Errorf("Body = %q", r.Body)
	}
	if r.URL != "http://arxiv.org/abs/1706.03762v1" {
		t.Errorf("URL = %q", r.URL)
	}
	if r.Type != types.ResourcePaper || r.Source != string(Arxiv) {
		t.Errorf("Type/Source = %q/%q", r.Type, r.Source)
	}
	authors, _ := r.Extra[types.ExtraAuthors].([]string)
	if len(authors) != 2 {
		t.Errorf("len(authors) = %d, want 2", len(authors))
	}
	if r.Extra["arxiv_id"] != "1706.03762" {
		t.Errorf("arxiv_id = %v", r.Extra["arxiv_id"])
	}
	if r.Extra[types.ExtraPublishedDate] != "2017-06-12T17:57:34Z" {
		t.Errorf("published_date = %v", r.Extra[types.ExtraPublishedDate])
	}
}

func TestArxivFetchTruncatesToLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleArxivSearchXML)
	}))
	defer ts.Close()
	withArxivBase(t, ts.URL)

	s := &ArxivSource{Client: testClient(ts)}
	results, err := s.Fetch(context.Background(), "attention", 1, 1)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("len(results) = %d, want 1", len(results))
	}
}

func TestArxivFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   Kind
	}{
		{"server error", http.StatusServiceUnavailable, "down", KindStatus},
		{"malformed feed", http.StatusOK, "<feed><entry>", KindDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()
			withArxivBase(t, ts.URL)

			s := &ArxivSource{Client: testClient(ts)}
			_, err := s.Fetch(context.Background(), "attention", 5, 1)
			fe, ok := err.(*FetchError)
			if !ok {
				t.Fatalf("err = %T %v, want *FetchError", err, err)
			}
			if fe.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", fe.Kind, tt.kind)
			}
		})
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/1706.03762v5", "1706.03762"},
		{"http://arxiv.org/abs/2301.12345", "2301.12345"},
		{"https://arxiv.org/abs/2301.07041v2", "2301.07041"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := extractArxivID(tt.input)
			if got != tt.want {
				t.Errorf("extractArxivID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
