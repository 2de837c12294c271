package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

var (
	arxivAbsExpr  = regexp.MustCompile(`(?:arxiv\.org|alphaxiv\.org)/abs/(\d{4}\.\d{4,5})`)
	arxivIDExpr   = regexp.MustCompile(`(\d{4}\.\d{4,5})`)
	nextPushExpr  = regexp.MustCompile(`(?s)self\.__next_d\.push\(\[.*?,(.*?)\]\)`)
	pagePropsKeys = []string{"papers", "articles", "posts", "trending", "data"}
)

// seenChecker is the slice of the repository the scraper consults to skip
// papers already processed in earlier passes. Purely an optimization: the
// orchestrator re-checks.
type seenChecker interface {
	IsSeen(ctx context.Context, url string) (bool, error)
}

// AlphaXivSource scrapes the trending page for fresh paper signals.
type AlphaXivSource struct {
	trendingURL string
	client      *http.Client
	seen        seenChecker
	logger      *slog.Logger
}

var _ ports.SignalSource = (*AlphaXivSource)(nil)

// NewAlphaXivSource wires the scraper; seen may be nil.
func NewAlphaXivSource(trendingURL string, seen seenChecker, logger *slog.Logger) *AlphaXivSource {
	return &AlphaXivSource{
		trendingURL: trendingURL,
		client:      &http.Client{Timeout: 15 * time.Second},
		seen:        seen,
		logger:      logger,
	}
}

// Name identifies the adapter.
func (a *AlphaXivSource) Name() string { return "alphaxiv" }

// FetchSignals scrapes the trending page and emits one signal per new paper,
// normalized to its arxiv.org abstract URL. The page is a Next.js app: paper
// data lives in embedded hydration state, so that is mined first; the anchor
// scan is a fallback for markup without it.
func (a *AlphaXivSource) FetchSignals(ctx context.Context) ([]domain.Signal, error) {
	doc, err := a.fetchDocument(ctx, a.trendingURL)
	if err != nil {
		return nil, fmt.Errorf("fetch trending page: %w", err)
	}

	papers := extractPapersFromState(doc)
	if len(papers) == 0 {
		papers = extractPapersFromAnchors(doc)
	}
	if len(papers) == 0 {
		a.debug("no papers found on trending page")
		return nil, nil
	}

	var signals []domain.Signal
	for _, paper := range papers {
		paperURL := "https://arxiv.org/abs/" + paper.arxivID
		if a.seen != nil {
			if seen, err := a.seen.IsSeen(ctx, paperURL); err == nil && seen {
				continue
			}
		}

		text := paper.title
		if paper.abstract != "" {
			text = paper.title + "\n\n" + paper.abstract
		}

		signals = append(signals, domain.Signal{
			Source: "alphaxiv",
			Title:  paper.title,
			Text:   truncateText(text, signalTextLimit),
			Author: paper.authors,
			URL:    paperURL,
			Extra: map[string]any{
				"arxiv_id": paper.arxivID,
			},
		})
	}

	a.debug("scan complete", "papers", len(signals))
	return signals, nil
}

func (a *AlphaXivSource) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "data-deal-monitor/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

type trendingPaper struct {
	arxivID  string
	title    string
	abstract string
	authors  string
}

// extractPapersFromState mines the Next.js hydration payloads: the
// `self.__next_d.push` chunks and the `__NEXT_DATA__` script tag.
func extractPapersFromState(doc *goquery.Document) []trendingPaper {
	var papers []trendingPaper
	seen := map[string]struct{}{}

	add := func(item map[string]any) {
		paper, ok := paperFromState(item)
		if !ok {
			return
		}
		if _, dup := seen[paper.arxivID]; dup {
			return
		}
		seen[paper.arxivID] = struct{}{}
		papers = append(papers, paper)
	}

	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		for _, match := range nextPushExpr.FindAllStringSubmatch(script.Text(), -1) {
			var payload any
			if err := json.Unmarshal([]byte(match[1]), &payload); err != nil {
				continue
			}
			switch v := payload.(type) {
			case []any:
				for _, entry := range v {
					if item, ok := entry.(map[string]any); ok {
						add(item)
					}
				}
			case map[string]any:
				add(v)
			}
		}
	})

	doc.Find("script#__NEXT_DATA__").Each(func(_ int, script *goquery.Selection) {
		var nextData struct {
			Props struct {
				PageProps map[string]any `json:"pageProps"`
			} `json:"props"`
		}
		if err := json.Unmarshal([]byte(script.Text()), &nextData); err != nil {
			return
		}
		for _, key := range pagePropsKeys {
			items, ok := nextData.Props.PageProps[key].([]any)
			if !ok {
				continue
			}
			for _, entry := range items {
				if item, ok := entry.(map[string]any); ok {
					add(item)
				}
			}
		}
	})

	return papers
}

// paperFromState builds a paper from one hydration dict, deriving the arXiv
// id from the id/url fields when it is not carried directly.
func paperFromState(item map[string]any) (trendingPaper, bool) {
	arxivID := stateString(item, "arxiv_id")
	if arxivID == "" {
		for _, field := range []string{"id", "paper_id", "url", "link"} {
			if match := arxivIDExpr.FindStringSubmatch(stateString(item, field)); match != nil {
				arxivID = match[1]
				break
			}
		}
	}
	if arxivID == "" {
		return trendingPaper{}, false
	}

	title := stateString(item, "title")
	if title == "" {
		title = "arXiv:" + arxivID
	}
	abstract := stateString(item, "abstract")
	if abstract == "" {
		abstract = stateString(item, "summary")
	}

	return trendingPaper{
		arxivID:  arxivID,
		title:    title,
		abstract: abstract,
		authors:  stateAuthors(item["authors"]),
	}, true
}

func stateString(item map[string]any, key string) string {
	switch v := item[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}

// stateAuthors flattens an author list that may hold strings or name dicts.
func stateAuthors(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		var names []string
		for _, entry := range v {
			switch author := entry.(type) {
			case string:
				names = append(names, author)
			case map[string]any:
				if name, ok := author["name"].(string); ok {
					names = append(names, name)
				}
			}
		}
		return strings.Join(names, ", ")
	default:
		return ""
	}
}

// extractPapersFromAnchors walks anchors linking to paper abstracts; the
// anchor text is the best available title, falling back to the bare arXiv id.
func extractPapersFromAnchors(doc *goquery.Document) []trendingPaper {
	var papers []trendingPaper
	seen := map[string]struct{}{}

	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		match := arxivAbsExpr.FindStringSubmatch(href)
		if match == nil {
			return
		}
		arxivID := match[1]
		if _, ok := seen[arxivID]; ok {
			return
		}
		seen[arxivID] = struct{}{}

		title := strings.TrimSpace(anchor.Text())
		if title == "" {
			title = "arXiv:" + arxivID
		}
		papers = append(papers, trendingPaper{arxivID: arxivID, title: title})
	})

	return papers
}

func (a *AlphaXivSource) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
