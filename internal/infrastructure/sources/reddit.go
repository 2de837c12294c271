package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/config"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

const (
	defaultRedditTokenURL = "https://www.reddit.com/api/v1/access_token"
	defaultRedditAPIURL   = "https://oauth.reddit.com"

	redditCommentLimit = 20
)

// RedditSource scans configured subreddits for keyword-matching posts,
// top-level comments on those posts, and targeted keyword searches.
type RedditSource struct {
	cfg       config.RedditConfig
	keywords  []string
	searchFor []string
	client    *http.Client
	logger    *slog.Logger
	tokenURL  string
	apiURL    string
	now       func() time.Time
}

var _ ports.SignalSource = (*RedditSource)(nil)

// NewRedditSource wires the subreddit adapter. searchFor carries the keyword
// subset worth an explicit search query on top of the /new scan.
func NewRedditSource(cfg config.RedditConfig, keywords, searchFor []string, logger *slog.Logger) *RedditSource {
	return &RedditSource{
		cfg:       cfg,
		keywords:  keywords,
		searchFor: searchFor,
		client:    &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
		tokenURL:  defaultRedditTokenURL,
		apiURL:    defaultRedditAPIURL,
		now:       time.Now,
	}
}

// Name identifies the adapter.
func (r *RedditSource) Name() string { return "reddit" }

type redditPost struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Selftext      string  `json:"selftext"`
	Author        string  `json:"author"`
	Permalink     string  `json:"permalink"`
	Subreddit     string  `json:"subreddit"`
	Score         int     `json:"score"`
	LinkFlairText string  `json:"link_flair_text"`
	CreatedUTC    float64 `json:"created_utc"`
}

type redditComment struct {
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Permalink  string  `json:"permalink"`
	Subreddit  string  `json:"subreddit"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

type redditListing[T any] struct {
	Data struct {
		Children []struct {
			Data T `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchSignals scans every configured subreddit. Per-subreddit failures are
// logged and skipped so one subreddit cannot sink the whole scan.
func (r *RedditSource) FetchSignals(ctx context.Context) ([]domain.Signal, error) {
	if r.cfg.ClientID == "" || r.cfg.ClientSecret == "" {
		r.debug("skipping", "reason", "REDDIT_CLIENT_ID/SECRET not set")
		return nil, nil
	}

	token, err := r.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("reddit auth: %w", err)
	}

	lookback := r.cfg.LookbackHours
	if lookback <= 0 {
		lookback = 48
	}
	cutoff := float64(r.now().Add(-time.Duration(lookback) * time.Hour).Unix())

	var signals []domain.Signal
	for _, sub := range r.cfg.Subreddits {
		subSignals, err := r.scanSubreddit(ctx, token, sub, cutoff)
		if err != nil {
			r.debug("subreddit scan failed", "subreddit", sub, "error", err)
			continue
		}
		signals = append(signals, subSignals...)
	}

	unique := dedupeByURL(signals)
	r.debug("scan complete", "signals", len(unique))
	return unique, nil
}

func (r *RedditSource) scanSubreddit(ctx context.Context, token, sub string, cutoff float64) ([]domain.Signal, error) {
	var signals []domain.Signal

	var listing redditListing[redditPost]
	endpoint := fmt.Sprintf("%s/r/%s/new?limit=100", r.apiURL, url.PathEscape(sub))
	if err := getJSON(ctx, r.client, endpoint, r.authHeaders(token), &listing); err != nil {
		return nil, fmt.Errorf("fetch /new: %w", err)
	}

	for _, child := range listing.Data.Children {
		post := child.Data
		if post.CreatedUTC < cutoff {
			continue
		}
		if !MatchesKeywords(post.Title+" "+post.Selftext, r.keywords) {
			continue
		}
		signals = append(signals, r.postSignal(post))

		// Matching posts also get their top-level comments scanned.
		comments, err := r.fetchComments(ctx, token, sub, post.ID)
		if err != nil {
			r.debug("comment fetch failed", "post", post.ID, "error", err)
			continue
		}
		for _, comment := range comments {
			if MatchesKeywords(comment.Body, r.keywords) {
				signals = append(signals, r.commentSignal(comment, post.Title))
			}
		}
	}

	// Keyword searches catch posts where the match is less obvious.
	for _, keyword := range r.searchFor {
		params := url.Values{}
		params.Set("q", keyword)
		params.Set("sort", "new")
		params.Set("t", "day")
		params.Set("limit", "10")
		params.Set("restrict_sr", "1")

		var found redditListing[redditPost]
		searchURL := fmt.Sprintf("%s/r/%s/search?%s", r.apiURL, url.PathEscape(sub), params.Encode())
		if err := getJSON(ctx, r.client, searchURL, r.authHeaders(token), &found); err != nil {
			r.debug("search failed", "keyword", keyword, "error", err)
			continue
		}
		for _, child := range found.Data.Children {
			if child.Data.CreatedUTC < cutoff {
				continue
			}
			signals = append(signals, r.postSignal(child.Data))
		}
	}

	return signals, nil
}

// fetchComments returns up to redditCommentLimit top-level comments.
func (r *RedditSource) fetchComments(ctx context.Context, token, sub, postID string) ([]redditComment, error) {
	endpoint := fmt.Sprintf("%s/r/%s/comments/%s?limit=%d&depth=1",
		r.apiURL, url.PathEscape(sub), url.PathEscape(postID), redditCommentLimit)

	// The comments endpoint returns two listings: the post, then its comments.
	var payload []json.RawMessage
	if err := getJSON(ctx, r.client, endpoint, r.authHeaders(token), &payload); err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, nil
	}

	var listing redditListing[redditComment]
	if err := json.Unmarshal(payload[1], &listing); err != nil {
		return nil, fmt.Errorf("decode comment listing: %w", err)
	}

	comments := make([]redditComment, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Data.Body == "" {
			continue
		}
		comments = append(comments, child.Data)
		if len(comments) == redditCommentLimit {
			break
		}
	}
	return comments, nil
}

func (r *RedditSource) accessToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(r.cfg.ClientID, r.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %s", resp.Status)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return payload.AccessToken, nil
}

func (r *RedditSource) authHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + token,
		"User-Agent":    r.cfg.UserAgent,
	}
}

func (r *RedditSource) postSignal(post redditPost) domain.Signal {
	author := post.Author
	if author == "" {
		author = "[deleted]"
	}
	return domain.Signal{
		Source: "reddit",
		Title:  post.Title,
		Text:   truncateText(post.Selftext, signalTextLimit),
		Author: author,
		URL:    "https://reddit.com" + post.Permalink,
		Extra: map[string]any{
			"subreddit":   post.Subreddit,
			"score":       post.Score,
			"flair":       post.LinkFlairText,
			"created_utc": post.CreatedUTC,
		},
	}
}

func (r *RedditSource) commentSignal(comment redditComment, postTitle string) domain.Signal {
	author := comment.Author
	if author == "" {
		author = "[deleted]"
	}
	return domain.Signal{
		Source: "reddit_comment",
		Title:  "Re: " + postTitle,
		Text:   truncateText(comment.Body, signalTextLimit),
		Author: author,
		URL:    "https://reddit.com" + comment.Permalink,
		Extra: map[string]any{
			"subreddit":   comment.Subreddit,
			"score":       comment.Score,
			"flair":       "",
			"created_utc": comment.CreatedUTC,
		},
	}
}

func (r *RedditSource) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
