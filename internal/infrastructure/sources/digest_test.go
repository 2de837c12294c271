package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const digestFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Trending Papers</title>
    <item>
      <title>Preference Data Curation at Scale</title>
      <link>https://arxiv.org/abs/2502.11111</link>
      <description>Also see https://alphaxiv.org/abs/2502.22222 for the companion paper.</description>
      <pubDate>Mon, 24 Aug 2026 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Duplicate Pointer</title>
      <link>https://arxiv.org/abs/2502.11111</link>
      <description>Same paper again.</description>
    </item>
  </channel>
</rss>`

func TestDigestFeedExtractsPapers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(digestFeed))
	}))
	defer server.Close()

	src := NewDigestSource(server.URL, nil)
	signals, err := src.FetchSignals(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(signals) != 2 {
		t.Fatalf("expected 2 unique papers, got %d", len(signals))
	}
	if signals[0].URL != "https://arxiv.org/abs/2502.11111" {
		t.Fatalf("url not normalized: %s", signals[0].URL)
	}
	if signals[0].Title != "Preference Data Curation at Scale" {
		t.Fatalf("first link should borrow the item title: %s", signals[0].Title)
	}
	if signals[1].Title != "arXiv:2502.22222" {
		t.Fatalf("extra link should fall back to the bare id: %s", signals[1].Title)
	}
}

func TestDigestUnconfiguredSkips(t *testing.T) {
	t.Parallel()

	src := NewDigestSource("", nil)
	signals, err := src.FetchSignals(context.Background())
	if err != nil {
		t.Fatalf("unconfigured feed must not error: %v", err)
	}
	if len(signals) != 0 {
		t.Fatalf("expected no signals, got %d", len(signals))
	}
}
