// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/aihub/pkg/types"
)

// Rank scores every resource by TF-IDF cosine similarity to query and
// returns a new slice sorted by descending score. Ties keep input order.
// The input slice is not modified.
//
// The corpus is the query followed by each resource's "title body" text.
// Terms are lowercase runs of letters, digits or underscore of at least two
// runes, minus English stop words. idf(t) = ln((1+N)/(1+df(t))) + 1 and
// vectors are L2 normalized, so the cosine is a plain dot product.
func Rank(query string, resources []types.Resource) []types.Resource {
	if len(resources) == 0 {
		return []types.Resource{}
	}

	docs := make([][]string, 0, len(resources)+1)
	docs = append(docs, tokenize(strings.TrimSpace(query)))
	for _, r := range resources {
		docs = append(docs, tokenize(r.Title+" "+r.Body))
	}

	vectors := vectorize(docs)
	q := vectors[0]

	out := make([]types.Resource, len(resources))
	for i, r := range resources {
		score := clamp(dot(q, vectors[i+1]))
		r.SimilarityScore = &score
		out[i] = r
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score() > out[j].Score()
	})
	return out
}

// term is one non-zero coordinate of a sparse vector.
type term struct {
	index  int
	weight float64
}

// vectorize builds L2-normalized TF-IDF vectors for docs. Coordinates are
// sorted by vocabulary index so dot products sum in a fixed order.
func vectorize(docs [][]string) [][]term {
	vocab := make(map[string]int)
	var df []int
	counts := make([]map[int]int, len(docs))

	for d, tokens := range docs {
		counts[d] = make(map[int]int, len(tokens))
		for _, tok := range tokens {
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
				df = append(df, 0)
			}
			if counts[d][idx] == 0 {
				df[idx]++
			}
			counts[d][idx]++
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(df))
	for i, f := range df {
		idf[i] = math.Log((1+n)/(1+float64(f))) + 1
	}

	vectors := make([][]term, len(docs))
	for d, c := range counts {
		vec := make([]term, 0, len(c))
		var norm float64
		for idx, tf := range c {
			w := float64(tf) * idf[idx]
			vec = append(vec, term{index: idx, weight: w})
			norm += w * w
		}
		sort.Slice(vec, func(i, j int) bool { return vec[i].index < vec[j].index })
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range vec {
				vec[i].weight /= norm
			}
		}
		vectors[d] = vec
	}
	return vectors
}

// dot multiplies two index-sorted sparse vectors.
func dot(a, b []term) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].index == b[j].index:
			sum += a[i].weight * b[j].weight
			i++
			j++
		case a[i].index < b[j].index:
			i++
		default:
			j++
		}
	}
	return sum
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// tokenize lowercases s and splits it into terms, dropping one-rune tokens
// and stop words.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
