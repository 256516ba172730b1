package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.JournalRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

var _ storage.JournalRepository = &Repository{}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(migrations.MigratorConfig{DB: db, Logger: cfg.Logger})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

const selectEntryColumns = `
	SELECT
		id, kind, task_id, secondary_id,
		state, outcome, failure_kind,
		content, error_message, attempts,
		started_at, finished_at
	FROM journal_entries
`

// CreateEntry stores a finished operation.
func (r *Repository) CreateEntry(ctx context.Context, e model.JournalEntry) error {
	if e.ID == "" {
		return fmt.Errorf("entry id is required: %w", model.ErrNotValid)
	}
	if e.Kind == "" {
		return fmt.Errorf("entry kind is required: %w", model.ErrNotValid)
	}

	query := `
		INSERT INTO journal_entries (
			id, kind, task_id, secondary_id,
			state, outcome, failure_kind,
			content, error_message, attempts,
			started_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		e.ID,
		e.Kind,
		e.TaskID,
		e.SecondaryID,
		e.State,
		e.Outcome,
		e.FailureKind,
		e.Content,
		e.ErrorMessage,
		e.Attempts,
		e.StartedAt.UnixMilli(),
		e.FinishedAt.UnixMilli(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: journal_entries.") {
			return fmt.Errorf("journal entry already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert journal entry: %w", err)
	}

	r.logger.Debugf("Created journal entry in repository: %s", e.ID)
	return nil
}

// GetEntry retrieves a journal entry by ID.
func (r *Repository) GetEntry(ctx context.Context, id string) (*model.JournalEntry, error) {
	row := r.db.QueryRowContext(ctx, selectEntryColumns+` WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("journal entry %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query journal entry: %w", err)
	}

	return &e, nil
}

// ListEntries returns the journal entries, newest first.
func (r *Repository) ListEntries(ctx context.Context, opts storage.ListOptions) ([]model.JournalEntry, error) {
	query := selectEntryColumns
	var args []any
	if opts.Kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, opts.Kind)
	}
	query += ` ORDER BY finished_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query journal entries: %w", err)
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (model.JournalEntry, error) {
	var e model.JournalEntry
	var startedAt, finishedAt int64

	err := s.Scan(
		&e.ID,
		&e.Kind,
		&e.TaskID,
		&e.SecondaryID,
		&e.State,
		&e.Outcome,
		&e.FailureKind,
		&e.Content,
		&e.ErrorMessage,
		&e.Attempts,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return model.JournalEntry{}, err
	}

	e.StartedAt = timeFromUnixMilli(startedAt)
	e.FinishedAt = timeFromUnixMilli(finishedAt)

	return e, nil
}

func timeFromUnixMilli(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
