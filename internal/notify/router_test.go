package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
)

type captureNotifier struct {
	messages []string
	err      error
}

func (c *captureNotifier) Send(_ context.Context, message string) error {
	c.messages = append(c.messages, message)
	return c.err
}

func routeScore(t *testing.T, total int) (bool, *captureNotifier) {
	t.Helper()

	transport := &captureNotifier{}
	router := NewRouter(56, "U123", transport, nil)
	signal := domain.Signal{
		Source: "github",
		URL:    "https://github.com/o/r/issues/1",
		Title:  "Our labels keep coming back wrong",
		Author: "cto_jane",
	}
	scores := domain.ScoreResult{
		TotalScore: total,
		Category:   "Annotation Quality",
		Reasoning:  "clear commercial pain",
	}
	sent := router.RouteIfQualified(context.Background(), signal, scores)
	return sent, transport
}

func TestBelowThresholdIsNoOp(t *testing.T) {
	t.Parallel()

	sent, transport := routeScore(t, 55)
	if sent {
		t.Fatal("sub-threshold score must not dispatch")
	}
	if len(transport.messages) != 0 {
		t.Fatalf("unexpected messages: %v", transport.messages)
	}
}

func TestTierBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total int
		want  string
	}{
		{56, "New Lead"},
		{70, "New Lead"},
		{71, "Priority Lead"},
		{85, "Priority Lead"},
		{86, "ACTIVE BUYER DETECTED"},
		{100, "ACTIVE BUYER DETECTED"},
	}

	for _, c := range cases {
		sent, transport := routeScore(t, c.total)
		if !sent {
			t.Fatalf("score %d should dispatch", c.total)
		}
		if len(transport.messages) != 1 || !strings.Contains(transport.messages[0], c.want) {
			t.Fatalf("score %d: expected %q tier, got %q", c.total, c.want, transport.messages)
		}
	}
}

func TestActiveBuyerMentionsUser(t *testing.T) {
	t.Parallel()

	_, transport := routeScore(t, 90)
	if !strings.HasPrefix(transport.messages[0], "<@U123> ") {
		t.Fatalf("active-buyer notice missing mention: %q", transport.messages[0])
	}
}

func TestMessageCarriesBreakdownAndLink(t *testing.T) {
	t.Parallel()

	transport := &captureNotifier{}
	router := NewRouter(56, "", transport, nil)
	signal := domain.Signal{Source: "reddit", URL: "https://reddit.com/x", Title: "t", Author: "a"}
	scores := domain.ScoreResult{
		PainIntensity: 20, Urgency: 15, CommercialContext: 12,
		DecisionMaker: 10, AnthromindFit: 16, TotalScore: 73,
		Category: "Ground Truth", Reasoning: "why", SuggestedHook: "hook",
	}
	router.RouteIfQualified(context.Background(), signal, scores)

	msg := transport.messages[0]
	for _, want := range []string{
		"Pain:20/25", "Urgency:15/20", "Commercial:12/20",
		"Decision-maker:10/15", "Fit:16/20",
		"*Why:* why", "*Hook:* hook", "https://reddit.com/x",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestTransportFailureStillCountsAsDispatched(t *testing.T) {
	t.Parallel()

	transport := &captureNotifier{err: errors.New("webhook down")}
	router := NewRouter(56, "", transport, nil)
	sent := router.RouteIfQualified(context.Background(),
		domain.Signal{URL: "u"}, domain.ScoreResult{TotalScore: 75})

	if !sent {
		t.Fatal("fire-and-forget transport error must not unwind the dispatch")
	}
}

func TestLongMultibyteTitleTruncatedOnRuneBoundary(t *testing.T) {
	t.Parallel()

	transport := &captureNotifier{}
	router := NewRouter(56, "", transport, nil)
	signal := domain.Signal{
		URL:   "https://reddit.com/x",
		Title: strings.Repeat("ラベル品質", 30),
	}
	router.RouteIfQualified(context.Background(), signal, domain.ScoreResult{TotalScore: 75})

	msg := transport.messages[0]
	if !utf8.ValidString(msg) {
		t.Fatal("truncated title produced invalid UTF-8")
	}
	if !strings.Contains(msg, strings.Repeat("ラベル品質", 20)) {
		t.Fatalf("title truncated short of the limit:\n%s", msg)
	}
}
