// Package store persists load-run history and facility snapshots.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/wiendata/inselmap/internal/config"
	"github.com/wiendata/inselmap/internal/dataset"
	"github.com/wiendata/inselmap/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	SourceURL string `json:"source_url,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for load-run history.
type Store interface {
	// RecordRun persists a completed load with its quality report.
	RecordRun(ctx context.Context, sourceURL string, report *dataset.Report) (*model.LoadRun, error)

	// SaveFacilities persists the facility snapshot of a run. Returns rows written.
	SaveFacilities(ctx context.Context, runID string, facilities []model.Facility) (int64, error)

	// GetRun fetches one run by ID.
	GetRun(ctx context.Context, runID string) (*model.LoadRun, error)

	// ListRuns returns runs matching the filter, newest first.
	ListRuns(ctx context.Context, filter RunFilter) ([]model.LoadRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs the store named by the config. An empty driver means
// run history is disabled and Open returns nil with no error.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
