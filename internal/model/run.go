// Package model defines the records persisted by the run-history store.
package model

import (
	"time"

	"github.com/wiendata/inselmap/internal/dataset"
)

// LoadRun is one recorded dataset load with its quality report.
type LoadRun struct {
	ID        string          `json:"id"`
	SourceURL string          `json:"source_url"`
	Report    *dataset.Report `json:"report,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Facility is one recreational facility point, persisted when a run is
// saved with facilities.
type Facility struct {
	RunID    string  `json:"run_id"`
	Category string  `json:"category"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
}

// FacilitiesFromTable flattens a loaded table into persistable facility
// rows. Rows with invalid coordinates are kept, NaN and all, matching
// the warn-only loader contract; storage layers decide how to encode
// NaN (both backends store NULL).
func FacilitiesFromTable(runID string, t *dataset.Table) []Facility {
	field := t.CategoryField()
	out := make([]Facility, t.NumRows())
	for i := range t.Rows {
		out[i] = Facility{
			RunID:    runID,
			Category: t.Category(i, field),
			Lon:      t.Lon[i],
			Lat:      t.Lat[i],
		}
	}
	return out
}
