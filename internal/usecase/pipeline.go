package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

// PipelineDeps wires all driven adapters into the monitoring pipeline.
type PipelineDeps struct {
	Sources    []ports.SignalSource
	Repository ports.SignalRepository
	Outreach   ports.ContactLog
	Scorer     ports.SignalScorer
	Router     ports.LeadRouter
	Pacing     time.Duration
	Logger     *slog.Logger
}

// Pipeline implements one monitoring pass: collect signals from every source,
// dedup them against the store and the outreach log, score the survivors,
// persist everything, and raise tiered notifications for qualifying leads.
type Pipeline struct {
	sources    []ports.SignalSource
	repository ports.SignalRepository
	outreach   ports.ContactLog
	scorer     ports.SignalScorer
	router     ports.LeadRouter
	pacing     time.Duration
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		sources:    deps.Sources,
		repository: deps.Repository,
		outreach:   deps.Outreach,
		scorer:     deps.Scorer,
		router:     deps.Router,
		pacing:     deps.Pacing,
		logger:     deps.Logger,
	}
}

// Run executes one full pass. It returns an error only for store-layer
// failures: without a trustworthy store, dedup correctness is gone and the
// pass must stop. Source failures are isolated and evaluator failures are
// absorbed by the scorer.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.repository.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	raw := p.collect(ctx)
	p.info("collection done", "raw_signals", len(raw))

	fresh, err := p.dedup(ctx, raw)
	if err != nil {
		return err
	}
	p.info("dedup done", "new_signals", len(fresh))

	if len(fresh) == 0 {
		p.info("no new signals to process")
		return nil
	}

	scored, notified, err := p.scoreAndNotify(ctx, fresh)
	if err != nil {
		return err
	}

	p.info("pass complete",
		"raw", len(raw), "new", len(fresh), "scored", scored, "notified", notified)
	return nil
}

// collect invokes every source in registration order. One source failing
// never prevents the others from contributing.
func (p *Pipeline) collect(ctx context.Context) []domain.Signal {
	var all []domain.Signal
	for _, source := range p.sources {
		p.info("scanning source", "source", source.Name())
		signals, err := source.FetchSignals(ctx)
		if err != nil {
			if p.logger != nil {
				p.logger.Error("source failed", "source", source.Name(), "error", err)
			}
			continue
		}
		all = append(all, signals...)
	}
	return all
}

// dedup drops URL-less signals, previously seen URLs, repeats of a URL
// within the current batch, and signals whose author was already contacted
// through the outreach tool. Outreach-suppressed URLs are marked seen so they
// are never fetched again, but their content is intentionally never scored or
// stored.
func (p *Pipeline) dedup(ctx context.Context, raw []domain.Signal) ([]domain.Signal, error) {
	var fresh []domain.Signal
	inBatch := make(map[string]struct{}, len(raw))
	for _, signal := range raw {
		if signal.URL == "" {
			continue
		}
		if _, dup := inBatch[signal.URL]; dup {
			continue
		}
		inBatch[signal.URL] = struct{}{}

		seen, err := p.repository.IsSeen(ctx, signal.URL)
		if err != nil {
			return nil, fmt.Errorf("check seen %s: %w", signal.URL, err)
		}
		if seen {
			continue
		}

		if signal.Author != "" && p.outreach != nil && p.outreach.AlreadyContacted(signal.Author) {
			p.debug("suppressed by outreach log", "url", signal.URL, "author", signal.Author)
			if err := p.repository.MarkSeen(ctx, signal.URL); err != nil {
				return nil, fmt.Errorf("mark contacted %s: %w", signal.URL, err)
			}
			continue
		}

		fresh = append(fresh, signal)
	}
	return fresh, nil
}

// scoreAndNotify runs every new signal through the rubric, persists it
// unconditionally (degraded verdicts included), and routes qualifying leads.
func (p *Pipeline) scoreAndNotify(ctx context.Context, fresh []domain.Signal) (scored, notified int, err error) {
	for i, signal := range fresh {
		p.info("scoring signal", "progress", fmt.Sprintf("%d/%d", i+1, len(fresh)), "title", shorten(signal.Title))

		scores := p.scorer.ScoreSignal(ctx, signal)
		scored++

		if err := p.repository.SaveSignal(ctx, signal, scores); err != nil {
			return scored, notified, fmt.Errorf("persist %s: %w", signal.URL, err)
		}
		if err := p.repository.MarkSeen(ctx, signal.URL); err != nil {
			return scored, notified, fmt.Errorf("mark seen %s: %w", signal.URL, err)
		}

		if p.router != nil && p.router.RouteIfQualified(ctx, signal, scores) {
			notified++
			if err := p.repository.MarkNotified(ctx, signal.URL); err != nil {
				return scored, notified, fmt.Errorf("mark notified %s: %w", signal.URL, err)
			}
			p.info("lead dispatched", "url", signal.URL, "score", scores.TotalScore, "category", scores.Category)
		} else {
			p.debug("logged without notification", "url", signal.URL, "score", scores.TotalScore)
		}

		// Pacing between evaluator calls; not a retry or backoff mechanism.
		if p.pacing > 0 && i < len(fresh)-1 {
			select {
			case <-time.After(p.pacing):
			case <-ctx.Done():
				return scored, notified, ctx.Err()
			}
		}
	}
	return scored, notified, nil
}

func shorten(title string) string {
	runes := []rune(title)
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return title
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
