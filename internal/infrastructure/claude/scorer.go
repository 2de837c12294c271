// Package claude scores signals against the multi-dimensional intent rubric
// via the Anthropic messages API.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/config"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

const (
	anthropicVersion = "2023-06-01"
	textBudget       = 2000
	defaultMaxTokens = 500
)

// Scorer invokes the rubric evaluator once per signal. It never returns an
// error: every evaluator-side failure becomes a degraded all-zero result so
// the pipeline keeps moving.
type Scorer struct {
	endpoint   string
	model      string
	apiKey     string
	maxTokens  int
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.SignalScorer = (*Scorer)(nil)

// NewScorer builds a scorer from configuration.
func NewScorer(cfg config.ClaudeConfig, logger *slog.Logger) *Scorer {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Scorer{
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// ScoreSignal evaluates one signal. Sub-scores come back clamped to their
// documented bounds and the total is recomputed from them.
func (s *Scorer) ScoreSignal(ctx context.Context, signal domain.Signal) domain.ScoreResult {
	if s.apiKey == "" {
		s.debug("skipping scoring", "reason", "ANTHROPIC_API_KEY not set")
		return domain.DegradedScore("No API key")
	}

	raw, err := s.complete(ctx, buildUserMessage(signal))
	if err != nil {
		s.debug("evaluator call failed", "url", signal.URL, "error", err)
		return domain.DegradedScore(fmt.Sprintf("Error: %v", err))
	}

	// The model occasionally emits scores as floats; accept and coerce.
	var parsed struct {
		PainIntensity     float64 `json:"pain_intensity"`
		Urgency           float64 `json:"urgency"`
		CommercialContext float64 `json:"commercial_context"`
		DecisionMaker     float64 `json:"decision_maker"`
		AnthromindFit     float64 `json:"anthromind_fit"`
		TotalScore        float64 `json:"total_score"`
		Category          string  `json:"category"`
		Reasoning         string  `json:"reasoning"`
		SuggestedHook     string  `json:"suggested_hook"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		s.debug("evaluator response unparseable", "url", signal.URL, "error", err)
		return domain.DegradedScore(fmt.Sprintf("Parse error: %v", err))
	}

	scores := domain.ScoreResult{
		PainIntensity:     int(parsed.PainIntensity),
		Urgency:           int(parsed.Urgency),
		CommercialContext: int(parsed.CommercialContext),
		DecisionMaker:     int(parsed.DecisionMaker),
		AnthromindFit:     int(parsed.AnthromindFit),
		TotalScore:        int(parsed.TotalScore),
		Category:          parsed.Category,
		Reasoning:         parsed.Reasoning,
		SuggestedHook:     parsed.SuggestedHook,
	}
	scores.Reconcile()
	return scores
}

// complete posts the rubric prompt plus the signal context and returns the
// model's text reply.
func (s *Scorer) complete(ctx context.Context, userMessage string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model":      s.model,
		"max_tokens": s.maxTokens,
		"system":     scoringPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call evaluator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("evaluator error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var reply struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, block := range reply.Content {
		if block.Type == "" || block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("response has no text content")
}

// buildUserMessage assembles source context, author, title, and the bounded
// text body for the evaluator.
func buildUserMessage(signal domain.Signal) string {
	source := signal.Source
	if source == "" {
		source = "unknown"
	}
	context := "Source: " + source
	if sub := signal.ExtraString("subreddit"); sub != "" {
		context += fmt.Sprintf(" (r/%s)", sub)
	}
	if repo := signal.ExtraString("repo"); repo != "" {
		context += fmt.Sprintf(" (repo: %s)", repo)
	}
	if dataset := signal.ExtraString("dataset_id"); dataset != "" {
		context += fmt.Sprintf(" (dataset: %s)", dataset)
	}

	author := signal.Author
	if author == "" {
		author = "unknown"
	}

	return fmt.Sprintf("%s\nAuthor: %s\nTitle: %s\n\nContent:\n%s",
		context, author, signal.Title, truncate(signal.Text, textBudget))
}

// stripFences removes optional markdown code-fence wrapping before parsing.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = text[3:]
		}
	}
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-3]
	}
	return strings.TrimSpace(text)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func (s *Scorer) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
