package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/config"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/infrastructure/claude"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/infrastructure/outreach"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/infrastructure/scheduler"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/infrastructure/slack"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/infrastructure/sources"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/infrastructure/storage"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/logging"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/notify"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/usecase"
)

// Application owns one instance of every collaborator and wires them into the
// monitoring pipeline. Nothing here holds global state: a new Application is
// a fully independent pipeline.
type Application struct {
	cfg        config.Config
	repository *storage.SQLiteRepository
	pipeline   *usecase.Pipeline
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	repository, err := storage.NewSQLiteRepository(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open signal store: %w", err)
	}

	keywords := cfg.Keywords.All()
	// Reddit additionally searches for the need cluster plus the leading
	// RLHF terms, where a keyword match in /new is least likely.
	searchFor := append(append([]string{}, cfg.Keywords.Need...), firstN(cfg.Keywords.RLHF, 3)...)

	registry := sources.NewRegistry()
	registry.Register(sources.NewRedditSource(
		cfg.Sources.Reddit, keywords, searchFor, baseLogger.With("component", "source.reddit")))
	registry.Register(sources.NewGitHubSource(
		cfg.Sources.GitHub, keywords, baseLogger.With("component", "source.github")))
	registry.Register(sources.NewHuggingFaceSource(
		cfg.Sources.HuggingFace, keywords, baseLogger.With("component", "source.huggingface")))
	registry.Register(sources.NewAlphaXivSource(
		cfg.Sources.AlphaXiv.TrendingURL, repository, baseLogger.With("component", "source.alphaxiv")))
	registry.Register(sources.NewDigestSource(
		cfg.Sources.Digest.FeedURL, baseLogger.With("component", "source.digest")))

	var contacts ports.ContactLog
	if cfg.Outreach.LogPath != "" {
		contacts = outreach.NewLogFilter(cfg.Outreach.LogPath, baseLogger.With("component", "outreach"))
	}

	scorer := claude.NewScorer(cfg.Claude, baseLogger.With("component", "scorer"))
	transport := slack.NewWebhook(cfg.Slack.WebhookURL, baseLogger.With("component", "slack"))
	router := notify.NewRouter(cfg.Scoring.Threshold, cfg.Slack.UserID, transport,
		baseLogger.With("component", "router"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:    registry.All(),
		Repository: repository,
		Outreach:   contacts,
		Scorer:     scorer,
		Router:     router,
		Pacing:     cfg.Scoring.Pacing(),
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, repository: repository, pipeline: pipeline}, nil
}

// RunOnce executes a single monitoring pass.
func (a *Application) RunOnce(ctx context.Context) error {
	return a.pipeline.Run(ctx)
}

// Watch runs passes on the configured interval until the context is done.
func (a *Application) Watch(ctx context.Context, logger *slog.Logger) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Every())
	runner := usecase.NewScheduler(driver, a.pipeline, logger)

	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return runner.Stop(context.Background())
}

// Close releases the signal store.
func (a *Application) Close() error {
	return a.repository.Close()
}

func firstN(values []string, n int) []string {
	if len(values) < n {
		n = len(values)
	}
	return values[:n]
}
