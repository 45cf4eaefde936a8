package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/wiendata/inselmap/internal/dataset"
	"github.com/wiendata/inselmap/internal/db"
	"github.com/wiendata/inselmap/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"insert_run": `INSERT INTO load_runs (id, source_url, report, created_at) VALUES ($1, $2, $3, $4)`,
	"get_run":    `SELECT id, source_url, report, created_at FROM load_runs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS load_runs (
	id         TEXT PRIMARY KEY,
	source_url TEXT NOT NULL,
	report     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS facilities (
	run_id   TEXT NOT NULL REFERENCES load_runs(id),
	category TEXT NOT NULL,
	lon      DOUBLE PRECISION,
	lat      DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_load_runs_source_url ON load_runs(source_url);
CREATE INDEX IF NOT EXISTS idx_load_runs_created_at ON load_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_facilities_run_id ON facilities(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) RecordRun(ctx context.Context, sourceURL string, report *dataset.Report) (*model.LoadRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal report")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO load_runs (id, source_url, report, created_at) VALUES ($1, $2, $3, $4)`,
		id, sourceURL, reportJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.LoadRun{
		ID:        id,
		SourceURL: sourceURL,
		Report:    report,
		CreatedAt: now,
	}, nil
}

func (s *PostgresStore) SaveFacilities(ctx context.Context, runID string, facilities []model.Facility) (int64, error) {
	if len(facilities) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(facilities))
	for i, f := range facilities {
		rows[i] = []any{runID, f.Category, nullFloat(f.Lon), nullFloat(f.Lat)}
	}

	n, err := db.CopyFrom(ctx, s.pool, "facilities", []string{"run_id", "category", "lon", "lat"}, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: save facilities for run %s", runID)
	}
	return n, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.LoadRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, source_url, report, created_at FROM load_runs WHERE id = $1`,
		runID,
	)
	return scanPostgresRun(row)
}

func scanPostgresRun(row pgx.Row) (*model.LoadRun, error) {
	var (
		r          model.LoadRun
		reportJSON []byte
	)
	if err := row.Scan(&r.ID, &r.SourceURL, &reportJSON, &r.CreatedAt); err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}
	if len(reportJSON) > 0 {
		if err := json.Unmarshal(reportJSON, &r.Report); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal report")
		}
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.LoadRun, error) {
	query := `SELECT id, source_url, report, created_at FROM load_runs WHERE 1=1`
	var args []any

	if filter.SourceURL != "" {
		args = append(args, filter.SourceURL)
		query += ` AND source_url = $1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.LoadRun
	for rows.Next() {
		r, err := scanPostgresRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

