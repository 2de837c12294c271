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

const defaultGitHubSearchURL = "https://api.github.com/search/issues"

// GitHubSource scans issue search for data-quality pain signals: broad OR
// keyword queries first, then unfiltered scans of the priority repos.
type GitHubSource struct {
	cfg       config.GitHubConfig
	keywords  []string
	client    *http.Client
	logger    *slog.Logger
	searchURL string
	now       func() time.Time
}

var _ ports.SignalSource = (*GitHubSource)(nil)

// NewGitHubSource wires the issue-search adapter.
func NewGitHubSource(cfg config.GitHubConfig, keywords []string, logger *slog.Logger) *GitHubSource {
	return &GitHubSource{
		cfg:       cfg,
		keywords:  keywords,
		client:    &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
		searchURL: defaultGitHubSearchURL,
		now:       time.Now,
	}
}

// Name identifies the adapter.
func (g *GitHubSource) Name() string { return "github" }

type githubIssue struct {
	Title         string `json:"title"`
	Body          string `json:"body"`
	HTMLURL       string `json:"html_url"`
	CreatedAt     string `json:"created_at"`
	RepositoryURL string `json:"repository_url"`
	User          struct {
		Login string `json:"login"`
	} `json:"user"`
}

// FetchSignals runs the keyword queries and priority-repo scans. Rate
// limiting (403) ends the current phase early; a rejected query (422) is
// skipped.
func (g *GitHubSource) FetchSignals(ctx context.Context) ([]domain.Signal, error) {
	if g.cfg.Token == "" {
		g.debug("skipping", "reason", "GITHUB_TOKEN not set")
		return nil, nil
	}

	lookback := g.cfg.LookbackDays
	if lookback <= 0 {
		lookback = 2
	}
	since := g.now().UTC().AddDate(0, 0, -lookback).Format("2006-01-02")

	var signals []domain.Signal
	seen := map[string]struct{}{}

	for _, terms := range g.cfg.SearchQueries {
		query := fmt.Sprintf("(%s) is:issue is:open created:>%s", terms, since)
		items, status, err := g.search(ctx, query)
		if err != nil {
			g.debug("keyword query failed", "query", terms, "error", err)
			continue
		}
		if status == http.StatusForbidden {
			g.debug("rate limited on keyword search, stopping early")
			break
		}
		if status == http.StatusUnprocessableEntity {
			g.debug("query rejected", "query", terms)
			continue
		}

		for _, item := range items {
			if _, ok := seen[item.HTMLURL]; ok || item.HTMLURL == "" {
				continue
			}
			seen[item.HTMLURL] = struct{}{}
			if !MatchesKeywords(item.Title+" "+item.Body, g.keywords) {
				continue
			}
			signals = append(signals, g.toSignal(item, ""))
		}
	}
	g.debug("keyword queries done", "signals", len(signals))

	for _, repo := range g.cfg.PriorityRepos {
		query := fmt.Sprintf("repo:%s is:issue is:open created:>%s", repo, since)
		items, status, err := g.search(ctx, query)
		if err != nil {
			g.debug("repo scan failed", "repo", repo, "error", err)
			continue
		}
		if status == http.StatusForbidden {
			g.debug("rate limited on repo scan, stopping early")
			break
		}
		if status == http.StatusUnprocessableEntity {
			g.debug("repo scan rejected", "repo", repo)
			continue
		}

		// Priority repos skip the keyword pre-filter: volume is small and
		// the rubric handles false positives.
		for _, item := range items {
			if _, ok := seen[item.HTMLURL]; ok || item.HTMLURL == "" {
				continue
			}
			seen[item.HTMLURL] = struct{}{}
			signals = append(signals, g.toSignal(item, repo))
		}
	}

	g.debug("scan complete", "total", len(signals))
	return signals, nil
}

func (g *GitHubSource) search(ctx context.Context, query string) ([]githubIssue, int, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "created")
	params.Set("per_page", "25")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "token "+g.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("github returned %s", resp.Status)
	}

	var payload struct {
		Items []githubIssue `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return payload.Items, resp.StatusCode, nil
}

func (g *GitHubSource) toSignal(item githubIssue, repo string) domain.Signal {
	if repo == "" && item.RepositoryURL != "" {
		parts := strings.Split(item.RepositoryURL, "/")
		if len(parts) >= 2 {
			repo = strings.Join(parts[len(parts)-2:], "/")
		}
	}
	return domain.Signal{
		Source: "github",
		Title:  item.Title,
		Text:   truncateText(item.Body, signalTextLimit),
		Author: item.User.Login,
		URL:    item.HTMLURL,
		Extra: map[string]any{
			"repo":       repo,
			"stars":      0,
			"created_at": item.CreatedAt,
		},
	}
}

func (g *GitHubSource) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
