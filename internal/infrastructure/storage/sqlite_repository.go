package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS signals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	url TEXT NOT NULL UNIQUE,
	title TEXT,
	text TEXT,
	author TEXT,
	extra_json TEXT,
	category TEXT,
	pain_intensity INTEGER DEFAULT 0,
	urgency INTEGER DEFAULT 0,
	commercial_context INTEGER DEFAULT 0,
	decision_maker INTEGER DEFAULT 0,
	anthromind_fit INTEGER DEFAULT 0,
	total_score INTEGER DEFAULT 0,
	reasoning TEXT,
	suggested_hook TEXT,
	notified INTEGER DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS seen_urls (
	url TEXT PRIMARY KEY,
	first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteRepository persists seen URLs and scored signals into a sqlite file.
type SQLiteRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SignalRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (and creates if missing) the database at path.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// Init idempotently creates the schema.
func (r *SQLiteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// IsSeen reports whether the URL has already been processed.
func (r *SQLiteRepository) IsSeen(ctx context.Context, url string) (bool, error) {
	query, args, err := r.builder.
		Select("1").
		From("seen_urls").
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build seen query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query seen url: %w", err)
	}
	return true, nil
}

// MarkSeen records the URL as processed. Duplicate inserts are a no-op.
func (r *SQLiteRepository) MarkSeen(ctx context.Context, url string) error {
	query, args, err := r.builder.
		Insert("seen_urls").
		Options("OR IGNORE").
		Columns("url").
		Values(url).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark seen: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// SaveSignal inserts the scored signal. A row already stored for the URL wins:
// the insert is silently ignored, never overwritten.
func (r *SQLiteRepository) SaveSignal(ctx context.Context, signal domain.Signal, scores domain.ScoreResult) error {
	extra, err := json.Marshal(signal.Extra)
	if err != nil {
		return fmt.Errorf("marshal extra fields: %w", err)
	}

	query, args, err := r.builder.
		Insert("signals").
		Options("OR IGNORE").
		Columns(
			"source", "url", "title", "text", "author", "extra_json",
			"category", "pain_intensity", "urgency", "commercial_context",
			"decision_maker", "anthromind_fit", "total_score",
			"reasoning", "suggested_hook",
		).
		Values(
			signal.Source, signal.URL, signal.Title, signal.Text, signal.Author, string(extra),
			scores.Category, scores.PainIntensity, scores.Urgency, scores.CommercialContext,
			scores.DecisionMaker, scores.AnthromindFit, scores.TotalScore,
			scores.Reasoning, scores.SuggestedHook,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save signal: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save signal: %w", err)
	}
	return nil
}

// MarkNotified flips the notified flag for the stored signal; no-op if the
// URL has no row.
func (r *SQLiteRepository) MarkNotified(ctx context.Context, url string) error {
	query, args, err := r.builder.
		Update("signals").
		Set("notified", 1).
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark notified: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
