// Package notify classifies scored signals into severity tiers and formats
// the outbound lead notices.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

// Tier bands are fixed; only the entry threshold below them is configurable.
const (
	priorityBand    = 71
	activeBuyerBand = 86

	titleLimit = 100
)

// Router gates signals on the score threshold and dispatches the matching
// tier message through the transport.
type Router struct {
	threshold int
	userID    string
	transport ports.Notifier
	logger    *slog.Logger
}

var _ ports.LeadRouter = (*Router)(nil)

// NewRouter wires the transport and the configured threshold. userID, when
// set, is mentioned directly on active-buyer notices.
func NewRouter(threshold int, userID string, transport ports.Notifier, logger *slog.Logger) *Router {
	return &Router{
		threshold: threshold,
		userID:    userID,
		transport: transport,
		logger:    logger,
	}
}

// RouteIfQualified dispatches a tiered notice when the total score clears the
// threshold and reports whether one was sent. Transport failures are logged,
// never raised.
func (r *Router) RouteIfQualified(ctx context.Context, signal domain.Signal, scores domain.ScoreResult) bool {
	if scores.TotalScore < r.threshold {
		return false
	}

	message := r.formatMessage(signal, scores)
	if err := r.transport.Send(ctx, message); err != nil && r.logger != nil {
		r.logger.Warn("lead notification failed", "url", signal.URL, "error", err)
	}
	return true
}

func (r *Router) formatMessage(signal domain.Signal, scores domain.ScoreResult) string {
	title := signal.Title
	if runes := []rune(title); len(runes) > titleLimit {
		title = string(runes[:titleLimit])
	}
	author := signal.Author
	if author == "" {
		author = "unknown"
	}

	breakdown := fmt.Sprintf(
		"Pain:%d/%d | Urgency:%d/%d | Commercial:%d/%d | Decision-maker:%d/%d | Fit:%d/%d",
		scores.PainIntensity, domain.MaxPainIntensity,
		scores.Urgency, domain.MaxUrgency,
		scores.CommercialContext, domain.MaxCommercialContext,
		scores.DecisionMaker, domain.MaxDecisionMaker,
		scores.AnthromindFit, domain.MaxAnthromindFit,
	)

	body := fmt.Sprintf(
		"*%s*\nSource: %s | Author: %s\nCategory: %s\n%s\n\n*Why:* %s\n*Hook:* %s\n*Link:* %s",
		title, signal.Source, author, scores.Category, breakdown,
		scores.Reasoning, scores.SuggestedHook, signal.URL,
	)

	switch {
	case scores.TotalScore >= activeBuyerBand:
		mention := ""
		if r.userID != "" {
			mention = fmt.Sprintf("<@%s> ", r.userID)
		}
		return fmt.Sprintf("%s:rotating_light: *ACTIVE BUYER DETECTED* (Score: %d/100)\n\n%s\n\nEngage IMMEDIATELY.",
			mention, scores.TotalScore, body)
	case scores.TotalScore >= priorityBand:
		return fmt.Sprintf(":fire: *Priority Lead* (Score: %d/100)\n\n%s\n\nEngage within hours — consultative approach.",
			scores.TotalScore, body)
	default:
		return fmt.Sprintf(":mag: *New Lead* (Score: %d/100)\n\n%s", scores.TotalScore, body)
	}
}
