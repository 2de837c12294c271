package sources

import (
	"testing"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
)

func TestMatchesKeywords(t *testing.T) {
	t.Parallel()

	keywords := []string{"annotation quality", "RLHF data"}

	if !MatchesKeywords("our ANNOTATION QUALITY is terrible", keywords) {
		t.Fatal("expected case-insensitive match")
	}
	if !MatchesKeywords("need rlhf data for training", keywords) {
		t.Fatal("expected substring match")
	}
	if MatchesKeywords("nothing relevant here", keywords) {
		t.Fatal("unexpected match")
	}
	if MatchesKeywords("anything", nil) {
		t.Fatal("empty keyword list must never match")
	}
}

func TestDedupeByURLKeepsFirstInOrder(t *testing.T) {
	t.Parallel()

	signals := []domain.Signal{
		{URL: "https://a", Title: "first"},
		{URL: "https://b", Title: "second"},
		{URL: "https://a", Title: "duplicate"},
	}

	unique := dedupeByURL(signals)
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique signals, got %d", len(unique))
	}
	if unique[0].Title != "first" || unique[1].Title != "second" {
		t.Fatalf("order or first-wins broken: %+v", unique)
	}
}
