package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/wiendata/inselmap/internal/dataset"
	"github.com/wiendata/inselmap/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS load_runs (
	id         TEXT PRIMARY KEY,
	source_url TEXT NOT NULL,
	report     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS facilities (
	run_id   TEXT NOT NULL REFERENCES load_runs(id),
	category TEXT NOT NULL,
	lon      REAL,
	lat      REAL
);

CREATE INDEX IF NOT EXISTS idx_load_runs_source_url ON load_runs(source_url);
CREATE INDEX IF NOT EXISTS idx_load_runs_created_at ON load_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_facilities_run_id ON facilities(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordRun(ctx context.Context, sourceURL string, report *dataset.Report) (*model.LoadRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal report")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO load_runs (id, source_url, report, created_at) VALUES (?, ?, ?, ?)`,
		id, sourceURL, string(reportJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.LoadRun{
		ID:        id,
		SourceURL: sourceURL,
		Report:    report,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) SaveFacilities(ctx context.Context, runID string, facilities []model.Facility) (int64, error) {
	if len(facilities) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin facilities tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO facilities (run_id, category, lon, lat) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare facilities insert")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, f := range facilities {
		if _, err := stmt.ExecContext(ctx, runID, f.Category, nullFloat(f.Lon), nullFloat(f.Lat)); err != nil {
			return n, eris.Wrap(err, "sqlite: insert facility")
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return n, eris.Wrap(err, "sqlite: commit facilities")
	}
	return n, nil
}

// nullFloat maps NaN coordinates to NULL.
func nullFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.LoadRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_url, report, created_at FROM load_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.LoadRun, error) {
	var (
		r          model.LoadRun
		reportJSON sql.NullString
	)
	if err := row.Scan(&r.ID, &r.SourceURL, &reportJSON, &r.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, eris.Wrap(err, "run not found")
		}
		return nil, eris.Wrap(err, "scan run")
	}
	if reportJSON.Valid && reportJSON.String != "" {
		if err := json.Unmarshal([]byte(reportJSON.String), &r.Report); err != nil {
			return nil, eris.Wrap(err, "unmarshal report")
		}
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.LoadRun, error) {
	query := `SELECT id, source_url, report, created_at FROM load_runs WHERE 1=1`
	var args []any

	if filter.SourceURL != "" {
		query += ` AND source_url = ?`
		args = append(args, filter.SourceURL)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.LoadRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}
