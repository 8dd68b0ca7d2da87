// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/aihub/pkg/types"
)

func res(title, body string) types.Resource {
	return types.Resource{Type: types.ResourceBlog, Title: title, Body: body, URL: "https://example.com/" + title}
}

func corpus() []types.Resource {
	return []types.Resource{
		res("Cooking pasta", "A guide to Italian food"),
		res("transformers", "State of the art transformers library for NLP"),
		res("Attention is all you need", "The paper that introduced transformers"),
		res("Gardening", ""),
		res("Deep learning course", "Neural networks, CNNs and transformers"),
	}
}

func TestRankEmpty(t *testing.T) {
	out := Rank("transformers", nil)
	require.NotNil(t, out)
	assert.Empty(t, out)

	out = Rank("", []types.Resource{})
	assert.Empty(t, out)
}

func TestRankSingleton(t *testing.T) {
	out := Rank("transformers", []types.Resource{res("transformers", "")})
	require.Len(t, out, 1)
	require.True(t, out[0].Ranked())
	assert.InDelta(t, 1.0, out[0].Score(), 1e-9)
}

func TestRankIsPermutation(t *testing.T) {
	in := corpus()
	out := Rank("transformers", in)
	require.Len(t, out, len(in))

	seen := make(map[string]int)
	for _, r := range in {
		seen[r.URL]++
	}
	for _, r := range out {
		seen[r.URL]--
	}
	for url, n := range seen {
		assert.Zero(t, n, "resource %s", url)
	}
}

func TestRankSortedNonIncreasing(t *testing.T) {
	out := Rank("transformers library", corpus())
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Score(), out[i].Score())
	}
	assert.Equal(t, "transformers", out[0].Title)
	for _, r := range out {
		require.True(t, r.Ranked())
		assert.GreaterOrEqual(t, r.Score(), 0.0)
		assert.LessOrEqual(t, r.Score(), 1.0)
	}
}

func TestRankDisjointVocabularyScoresZero(t *testing.T) {
	out := Rank("transformers", corpus())
	for _, r := range out {
		if r.Title == "Cooking pasta" || r.Title == "Gardening" {
			require.True(t, r.Ranked())
			assert.Equal(t, 0.0, r.Score(), r.Title)
		}
	}
}

func TestRankEmptyBodyMatchesOnTitleOnly(t *testing.T) {
	out := Rank("datasets available", []types.Resource{
		res("llama", ""),
		res("tensorflow", "Open source machine learning framework"),
	})
	require.Len(t, out, 2)
	for _, r := range out {
		assert.Zero(t, r.Score(), r.Title)
	}
}

func TestRankStopWordsOnlyQuery(t *testing.T) {
	out := Rank("the of and", corpus())
	for _, r := range out {
		assert.Equal(t, 0.0, r.Score())
	}
	// All ties: input order is kept.
	assert.Equal(t, corpus()[0].Title, out[0].Title)
	assert.Equal(t, corpus()[4].Title, out[4].Title)
}

func TestRankStableForTies(t *testing.T) {
	in := []types.Resource{
		res("alpha", "unrelated"),
		res("beta", "unrelated"),
		res("gamma", "unrelated"),
	}
	out := Rank("transformers", in)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, []string{out[0].Title, out[1].Title, out[2].Title})
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := corpus()
	Rank("transformers", in)
	for _, r := range in {
		assert.False(t, r.Ranked())
	}
	assert.Equal(t, "Cooking pasta", in[0].Title)
}

func TestRankIdempotent(t *testing.T) {
	in := corpus()
	first := Rank("neural transformers", in)
	second := Rank("neural transformers", in)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].URL, second[i].URL)
		assert.Equal(t, first[i].Score(), second[i].Score())
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("The GPT-4 model, a_b and x: Transformers!")
	assert.Equal(t, []string{"gpt", "model", "a_b", "transformers"}, got)
}
