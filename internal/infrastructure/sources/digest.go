package sources

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/gofeed"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

// DigestSource reads the AlphaXiv weekly digest as an RSS/Atom feed and
// extracts paper signals from every linked abstract.
type DigestSource struct {
	feedURL string
	parser  *gofeed.Parser
	logger  *slog.Logger
}

var _ ports.SignalSource = (*DigestSource)(nil)

// NewDigestSource wires the digest feed adapter.
func NewDigestSource(feedURL string, logger *slog.Logger) *DigestSource {
	return &DigestSource{
		feedURL: feedURL,
		parser:  gofeed.NewParser(),
		logger:  logger,
	}
}

// Name identifies the adapter.
func (d *DigestSource) Name() string { return "alphaxiv_digest" }

// FetchSignals parses the digest feed. Each item contributes one signal per
// distinct arXiv link in its title, link, and content; the first link of an
// item borrows the item title, the rest fall back to the bare arXiv id.
func (d *DigestSource) FetchSignals(ctx context.Context) ([]domain.Signal, error) {
	if d.feedURL == "" {
		d.debug("skipping", "reason", "digest feed URL not configured")
		return nil, nil
	}

	feed, err := d.parser.ParseURLWithContext(d.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse digest feed: %w", err)
	}

	var signals []domain.Signal
	seen := map[string]struct{}{}

	for _, item := range feed.Items {
		haystack := item.Title + "\n" + item.Link + "\n" + item.Description + "\n" + item.Content
		first := true
		for _, match := range arxivAbsExpr.FindAllStringSubmatch(haystack, -1) {
			arxivID := match[1]
			if _, ok := seen[arxivID]; ok {
				continue
			}
			seen[arxivID] = struct{}{}

			title := "arXiv:" + arxivID
			if first && item.Title != "" {
				title = item.Title
			}
			first = false

			signals = append(signals, domain.Signal{
				Source: "alphaxiv_digest",
				Title:  title,
				Text:   title,
				URL:    "https://arxiv.org/abs/" + arxivID,
				Extra: map[string]any{
					"arxiv_id":   arxivID,
					"created_at": item.Published,
				},
			})
		}
	}

	d.debug("scan complete", "papers", len(signals))
	return signals, nil
}

func (d *DigestSource) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
