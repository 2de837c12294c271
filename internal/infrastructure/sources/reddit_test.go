package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/config"
)

// redditTestServer serves a token endpoint plus listing/comments/search
// payloads, keyed by the subreddit fixtures below.
func redditTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	now := float64(time.Now().Unix())
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			http.Error(w, "no auth", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"access_token": "tok-123"}`)
	})

	mux.HandleFunc("/r/MachineLearning/new", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"children":[
			{"data":{"id":"p1","title":"Struggling with noisy labels from our vendor","selftext":"We outsourced annotation and it failed.","author":"ml_cto","permalink":"/r/MachineLearning/comments/p1/x/","subreddit":"MachineLearning","score":55,"link_flair_text":"Discussion","created_utc":%f}},
			{"data":{"id":"p2","title":"Show-off: my weekend RL agent","selftext":"plays pong","author":"hobbyist","permalink":"/r/MachineLearning/comments/p2/y/","subreddit":"MachineLearning","score":3,"created_utc":%f}},
			{"data":{"id":"p3","title":"Old post about noisy labels","selftext":"","author":"old_user","permalink":"/r/MachineLearning/comments/p3/z/","subreddit":"MachineLearning","score":9,"created_utc":100}}
		]}}`, now, now)
	})

	mux.HandleFunc("/r/MachineLearning/comments/p1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"data":{"children":[]}},
			{"data":{"children":[
				{"data":{"body":"Same here, noisy labels everywhere","author":"fellow_sufferer","permalink":"/r/MachineLearning/comments/p1/x/c1/","subreddit":"MachineLearning","score":12,"created_utc":%f}},
				{"data":{"body":"nice post","author":"lurker","permalink":"/r/MachineLearning/comments/p1/x/c2/","subreddit":"MachineLearning","score":1,"created_utc":%f}}
			]}}
		]`, now, now)
	})

	mux.HandleFunc("/r/MachineLearning/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"children":[
			{"data":{"id":"s1","title":"Looking for annotators for medical data","selftext":"budget approved","author":"health_founder","permalink":"/r/MachineLearning/comments/s1/q/","subreddit":"MachineLearning","score":21,"created_utc":%f}}
		]}}`, now)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newRedditSource(t *testing.T, server *httptest.Server) *RedditSource {
	t.Helper()

	src := NewRedditSource(config.RedditConfig{
		ClientID:      "cid",
		ClientSecret:  "secret",
		UserAgent:     "data-deal-monitor/1.0",
		Subreddits:    []string{"MachineLearning"},
		LookbackHours: 48,
	}, []string{"noisy labels"}, []string{"looking for annotators"}, nil)
	src.tokenURL = server.URL + "/api/v1/access_token"
	src.apiURL = server.URL
	return src
}

func TestRedditScanCollectsPostsCommentsAndSearches(t *testing.T) {
	src := newRedditSource(t, redditTestServer(t))

	signals, err := src.FetchSignals(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	// Matching post + its matching comment + the search hit. The hobby post
	// misses the keywords and the old post misses the cutoff.
	if len(signals) != 3 {
		t.Fatalf("expected 3 signals, got %d: %+v", len(signals), signals)
	}

	post := signals[0]
	if post.Source != "reddit" || post.Author != "ml_cto" {
		t.Fatalf("unexpected post signal: %+v", post)
	}
	if !strings.HasPrefix(post.URL, "https://reddit.com/r/MachineLearning/comments/p1") {
		t.Fatalf("unexpected post url: %s", post.URL)
	}
	if post.ExtraString("subreddit") != "MachineLearning" {
		t.Fatalf("missing subreddit extra: %+v", post.Extra)
	}

	comment := signals[1]
	if comment.Source != "reddit_comment" {
		t.Fatalf("expected comment signal second, got %+v", comment)
	}
	if comment.Title != "Re: Struggling with noisy labels from our vendor" {
		t.Fatalf("unexpected comment title: %s", comment.Title)
	}

	search := signals[2]
	if search.Author != "health_founder" {
		t.Fatalf("expected search hit third, got %+v", search)
	}
}

func TestRedditMissingCredentialsSkips(t *testing.T) {
	t.Parallel()

	src := NewRedditSource(config.RedditConfig{}, nil, nil, nil)
	signals, err := src.FetchSignals(context.Background())
	if err != nil {
		t.Fatalf("unconfigured adapter must not error: %v", err)
	}
	if len(signals) != 0 {
		t.Fatalf("expected no signals, got %d", len(signals))
	}
}

func TestRedditAuthFailurePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer server.Close()

	src := newRedditSource(t, server)
	src.tokenURL = server.URL
	src.apiURL = server.URL

	if _, err := src.FetchSignals(context.Background()); err == nil {
		t.Fatal("expected auth error")
	}
}
