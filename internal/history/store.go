// Package history keeps batch reports so that past and interrupted runs can
// be inspected later.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/observability"
)

// ErrNotFound is returned when no report has the requested id.
var ErrNotFound = errors.New("report not found")

// Drivers maps configuration driver names to database/sql driver names.
var Drivers = map[string]string{
	"sqlite":   "sqlite3",
	"postgres": "postgres",
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS batch_reports (
		id          TEXT PRIMARY KEY,
		operation   TEXT NOT NULL,
		started_at  TIMESTAMP NOT NULL,
		elapsed_ms  BIGINT NOT NULL,
		total       INTEGER NOT NULL,
		succeeded   INTEGER NOT NULL,
		failed      INTEGER NOT NULL,
		interrupted BOOLEAN NOT NULL,
		report      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_batch_reports_started_at ON batch_reports (started_at)`,
}

// Summary is one row of the history listing.
type Summary struct {
	ID          string               `json:"id"`
	Operation   domain.OperationKind `json:"operation"`
	StartedAt   time.Time            `json:"started_at"`
	Elapsed     time.Duration        `json:"elapsed"`
	Total       int                  `json:"total"`
	Succeeded   int                  `json:"succeeded"`
	Failed      int                  `json:"failed"`
	Interrupted bool                 `json:"interrupted"`
}

// Store persists batch reports in SQLite or PostgreSQL.
type Store struct {
	db     *sql.DB
	logger *observability.Logger
}

// Open connects to the history database and creates the schema. For sqlite
// dsn is a file path whose directory is created when missing.
func Open(ctx context.Context, driver, dsn string, logger *observability.Logger) (*Store, error) {
	if logger == nil {
		logger = observability.Nop()
	}
	logger = logger.With().Str("component", "history").Str("driver", driver).Logger()
	sqlDriver, ok := Drivers[driver]
	if !ok {
		return nil, domain.ConfigError(fmt.Sprintf("unsupported history driver %q", driver), nil)
	}
	if dsn == "" {
		return nil, domain.ConfigError("history location is empty", nil)
	}

	if driver == "sqlite" && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, domain.StorageError("failed to create history directory", err)
		}
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, domain.StorageError("failed to open history database", err)
	}
	if driver == "sqlite" {
		// A single writer avoids "database is locked" with the sqlite driver.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, logger: logger}
	if err := withRetry(ctx, DefaultRetryConfig(), logger, db.PingContext); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return domain.StorageError("failed to migrate history schema", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a report. Saving the same id twice replaces the earlier copy.
func (s *Store) Save(ctx context.Context, report domain.BatchReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return domain.StorageError("failed to encode report", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StorageError("failed to start transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM batch_reports WHERE id = $1`, report.ID); err != nil {
		return domain.StorageError("failed to replace report", err)
	}

	query := `
		INSERT INTO batch_reports (id, operation, started_at, elapsed_ms, total, succeeded, failed, interrupted, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecContext(ctx, query,
		report.ID, string(report.Operation), report.StartedAt.UTC(), report.Elapsed.Milliseconds(),
		report.Total, report.Succeeded, report.Failed, report.Interrupted, string(body),
	)
	if err != nil {
		return domain.StorageError("failed to save report", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.StorageError("failed to commit report", err)
	}

	s.logger.Debug().Str("run_id", report.ID).Int("total", report.Total).Msg("Report saved to history")
	return nil
}

// List returns the most recent reports first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	query := `
		SELECT id, operation, started_at, elapsed_ms, total, succeeded, failed, interrupted
		FROM batch_reports
		ORDER BY started_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.StorageError("failed to list reports", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum       Summary
			op        string
			elapsedMS int64
		)
		if err := rows.Scan(&sum.ID, &op, &sum.StartedAt, &elapsedMS,
			&sum.Total, &sum.Succeeded, &sum.Failed, &sum.Interrupted); err != nil {
			return nil, domain.StorageError("failed to read report row", err)
		}
		sum.Operation = domain.OperationKind(op)
		sum.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("failed to list reports", err)
	}
	return out, nil
}

// Get loads the full report with the given id.
func (s *Store) Get(ctx context.Context, id string) (domain.BatchReport, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM batch_reports WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BatchReport{}, ErrNotFound
	}
	if err != nil {
		return domain.BatchReport{}, domain.StorageError("failed to load report", err)
	}

	var report domain.BatchReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return domain.BatchReport{}, domain.StorageError("failed to decode report", err)
	}
	return report, nil
}
