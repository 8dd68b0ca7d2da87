// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"github.com/pdiddy/aihub/internal/httputil"
	"github.com/pdiddy/aihub/pkg/types"
)

// Reddit endpoints. Declared as vars so tests can substitute httptest servers.
var (
	redditTokenURL   = "https://www.reddit.com/api/v1/access_token"
	redditOAuthBase  = "https://oauth.reddit.com"
	redditPublicBase = "https://www.reddit.com"
)

const (
	defaultSubreddit = "datascience"
	redditNoSummary  = "No summary available"
	// tokenSlack renews the app token slightly before Reddit expires it.
	tokenSlack = time.Minute
)

// RedditSource searches one subreddit for discussion posts. With client
// credentials it uses app-only OAuth; without, the public JSON listing.
type RedditSource struct {
	Client       *httputil.Client
	ClientID     string
	ClientSecret string
	Subreddit    string

	mu      sync.Mutex
	token   string
	expires time.Time
}

func (s *RedditSource) ID() ID                   { return Blogs }
func (s *RedditSource) Type() types.ResourceType { return types.ResourceBlog }

// Fetch searches the subreddit. Reddit paginates by cursor, so page is
// ignored and the first listing page is always returned.
func (s *RedditSource) Fetch(ctx context.Context, query string, limit, _ int) ([]types.Resource, error) {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return []types.Resource{}, nil
	}

	sub := s.Subreddit
	if sub == "" {
		sub = defaultSubreddit
	}
	params := url.Values{
		"q":           {query},
		"limit":       {strconv.Itoa(limit)},
		"restrict_sr": {"1"},
		"sort":        {"relevance"},
	}

	base := redditPublicBase
	path := "/r/" + url.PathEscape(sub) + "/search.json"
	headers := map[string]string{}
	if s.ClientID != "" && s.ClientSecret != "" {
		token, err := s.accessToken(ctx)
		if err != nil {
			return nil, classify(Blogs, err)
		}
		base = redditOAuthBase
		path = "/r/" + url.PathEscape(sub) + "/search"
		headers["Authorization"] = "Bearer " + token
	}

	var listing redditListing
	if err := s.Client.GetJSON(ctx, base+path+"?"+params.Encode(), headers, &listing); err != nil {
		return nil, classify(Blogs, err)
	}

	out := make([]types.Resource, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if len(out) == limit {
			break
		}
		post := child.Data
		body := strings.TrimSpace(post.Selftext)
		if body == "" {
			body = redditNoSummary
		}
		r := types.Resource{
			Type:   types.ResourceBlog,
			Source: string(Blogs),
			Title:  post.Title,
			Body:   body,
			URL:    post.URL,
		}
		r.SetExtra("subreddit", post.Subreddit)
		r.SetExtra("score", post.Score)
		r.SetExtra("permalink", "https://www.reddit.com"+post.Permalink)
		out = append(out, r)
	}
	return out, nil
}

// accessToken returns a cached app-only token, fetching a new one when the
// cached token is missing or about to expire.
func (s *RedditSource) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expires) {
		return s.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, redditTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "creating token request")
	}
	req.SetBasicAuth(s.ClientID, s.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s.Client.UserAgent != "" {
		req.Header.Set("User-Agent", s.Client.UserAgent)
	}

	hc := s.Client.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "requesting reddit token")
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return "", errors.Wrap(err, "reddit token")
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", httputil.MarkDecode(err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("reddit token response has no access_token")
	}

	s.token = tr.AccessToken
	s.expires = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSlack)
	return s.token, nil
}

// Reddit listing JSON structures.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title     string `json:"title"`
	Selftext  string `json:"selftext"`
	URL       string `json:"url"`
	Permalink string `json:"permalink"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
}
