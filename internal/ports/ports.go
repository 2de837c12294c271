package ports

import (
	"context"
	"time"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
)

// SignalSource pulls raw signals from one upstream platform. Adapters own
// their connectivity, credentials, and keyword pre-filtering; a misconfigured
// adapter returns an empty list, not an error.
type SignalSource interface {
	Name() string
	FetchSignals(ctx context.Context) ([]domain.Signal, error)
}

// SignalRepository is the durable dedup ground truth and signal history.
type SignalRepository interface {
	Init(ctx context.Context) error
	IsSeen(ctx context.Context, url string) (bool, error)
	MarkSeen(ctx context.Context, url string) error
	SaveSignal(ctx context.Context, signal domain.Signal, scores domain.ScoreResult) error
	MarkNotified(ctx context.Context, url string) error
}

// ContactLog answers whether another tool already reached out to an author.
// Implementations fail open: any read problem means "not contacted".
type ContactLog interface {
	AlreadyContacted(author string) bool
}

// SignalScorer evaluates a signal against the intent rubric. It never fails:
// evaluator-side problems surface as a degraded all-zero ScoreResult.
type SignalScorer interface {
	ScoreSignal(ctx context.Context, signal domain.Signal) domain.ScoreResult
}

// LeadRouter dispatches tiered notifications for qualifying signals and
// reports whether one was sent.
type LeadRouter interface {
	RouteIfQualified(ctx context.Context, signal domain.Signal, scores domain.ScoreResult) bool
}

// Notifier delivers one formatted message to the outbound channel.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// Scheduler controls when monitoring passes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
