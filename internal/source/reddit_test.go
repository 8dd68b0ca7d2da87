// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/aihub/pkg/types"
)

const sampleRedditListingJSON = `{"data": {"children": [
  {"data": {"title": "Best LLM papers of 2024", "selftext": "Here is my list.", "url": "https://reddit.com/r/datascience/1",
            "permalink": "/r/datascience/comments/1/", "subreddit": "datascience", "score": 42}},
  {"data": {"title": "Link post", "selftext": "", "url": "https://example.com/post",
            "permalink": "/r/datascience/comments/2/", "subreddit": "datascience", "score": 7}},
  {"data": {"title": "Third", "selftext": "x", "url": "https://example.com/3",
            "permalink": "/r/datascience/comments/3/", "subreddit": "datascience", "score": 1}}
]}}`

func withRedditServers(t *testing.T, ts *httptest.Server) {
	t.Helper()
	oldToken, oldOAuth, oldPublic := redditTokenURL, redditOAuthBase, redditPublicBase
	redditTokenURL = ts.URL + "/api/v1/access_token"
	redditOAuthBase = ts.URL + "/oauth"
	redditPublicBase = ts.URL + "/public"
	t.Cleanup(func() { redditTokenURL, redditOAuthBase, redditPublicBase = oldToken, oldOAuth, oldPublic })
}

func TestRedditFetchPublic(t *testing.T) {
	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, sampleRedditListingJSON)
	}))
	defer ts.Close()
	withRedditServers(t, ts)

	s := &RedditSource{Client: testClient(ts)}
	results, err := s.Fetch(context.Background(), "llm", 2, 5)
	require.NoError(t, err)

	assert.Equal(t, "/public/r/datascience/search.json", gotPath)
	assert.Contains(t, gotQuery, "restrict_sr=1")
	assert.Contains(t, gotQuery, "limit=2")
	assert.NotContains(t, gotQuery, "page")

	require.Len(t, results, 2)
	assert.Equal(t, types.ResourceBlog, results[0].Type)
	assert.Equal(t, string(Blogs), results[0].Source)
	assert.Equal(t, "Here is my list.", results[0].Body)
	assert.Equal(t, "https://www.reddit.com/r/datascience/comments/1/", results[0].Extra["permalink"])
	assert.Equal(t, redditNoSummary, results[1].Body)
}

func TestRedditFetchOAuthCachesToken(t *testing.T) {
	var tokenCalls atomic.Int32
	var gotBearer string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/access_token":
			tokenCalls.Add(1)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "id", user)
			assert.Equal(t, "secret", pass)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
			fmt.Fprint(w, `{"access_token": "tok-1", "expires_in": 3600}`)
		case "/oauth/r/MachineLearning/search":
			gotBearer = r.Header.Get("Authorization")
			fmt.Fprint(w, sampleRedditListingJSON)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	withRedditServers(t, ts)

	s := &RedditSource{Client: testClient(ts), ClientID: "id", ClientSecret: "secret", Subreddit: "MachineLearning"}
	for range 2 {
		results, err := s.Fetch(context.Background(), "llm", 5, 1)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	}
	assert.Equal(t, "Bearer tok-1", gotBearer)
	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestRedditFetchTokenFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer ts.Close()
	withRedditServers(t, ts)

	s := &RedditSource{Client: testClient(ts), ClientID: "id", ClientSecret: "bad"}
	_, err := s.Fetch(context.Background(), "llm", 5, 1)
	require.Error(t, err)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindStatus, fe.Kind)
	assert.Equal(t, http.StatusUnauthorized, fe.Status)
}

func TestRedditFetchEmptyQuery(t *testing.T) {
	s := &RedditSource{}
	results, err := s.Fetch(context.Background(), "   ", 5, 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}
