// Package sources holds the platform adapters that harvest raw signals, plus
// the registry the orchestrator iterates.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

// Registry keeps adapters in registration order; the orchestrator visits
// them in exactly that order every pass.
type Registry struct {
	adapters []ports.SignalSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends an adapter.
func (r *Registry) Register(source ports.SignalSource) {
	r.adapters = append(r.adapters, source)
}

// All returns the adapters in registration order.
func (r *Registry) All() []ports.SignalSource {
	return r.adapters
}

// MatchesKeywords reports whether text contains any keyword,
// case-insensitively. Adapters use it as a cheap pre-filter before the
// signal ever reaches the scorer.
func MatchesKeywords(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// dedupeByURL keeps the first signal per URL, preserving order.
func dedupeByURL(signals []domain.Signal) []domain.Signal {
	seen := make(map[string]struct{}, len(signals))
	unique := signals[:0:0]
	for _, s := range signals {
		if _, ok := seen[s.URL]; ok {
			continue
		}
		seen[s.URL] = struct{}{}
		unique = append(unique, s)
	}
	return unique
}

// getJSON performs an authenticated GET and decodes the JSON body into v.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncateText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// signalTextLimit bounds the stored body of any signal.
const signalTextLimit = 3000
