// Package dataset loads the Donauinsel facilities CSV into an in-memory
// table, profiles its quality, and derives point coordinates from the
// SHAPE geometry column.
package dataset

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Category column names in the source dataset. TYP_TXT carries the
// human-readable facility type, TYP the numeric code.
const (
	ColumnShape  = "SHAPE"
	ColumnTyp    = "TYP"
	ColumnTypTxt = "TYP_TXT"
)

// UnknownCategory is the literal category assigned to rows whose
// grouping cell is empty.
const UnknownCategory = "Unknown"

// Table holds the dataset loaded verbatim from the remote CSV plus the
// derived LON/LAT columns. Rows are never dropped or corrected after
// loading; a row whose SHAPE cell did not parse keeps NaN coordinates.
type Table struct {
	SourceURL string
	Header    []string
	Rows      [][]string

	// Derived columns, aligned with Rows. NaN marks a failed extraction.
	Lon []float64
	Lat []float64
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the number of source columns.
func (t *Table) NumCols() int { return len(t.Header) }

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, col index), tolerating ragged rows.
func (t *Table) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// ColumnValues returns all cells of the named column in row order.
// The second return is false when the column does not exist.
func (t *Table) ColumnValues(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	values := make([]string, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Cell(i, idx)
	}
	return values, true
}

// distinctNonEmpty counts distinct non-empty values in a column.
func distinctNonEmpty(values []string) int {
	seen := make(map[string]struct{})
	for _, v := range values {
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// CategoryField returns the grouping column: TYP_TXT when it has more
// than one distinct value, otherwise TYP.
func (t *Table) CategoryField() string {
	if values, ok := t.ColumnValues(ColumnTypTxt); ok && distinctNonEmpty(values) > 1 {
		return ColumnTypTxt
	}
	return ColumnTyp
}

// Category returns the row's category under the chosen grouping field,
// substituting UnknownCategory for empty cells.
func (t *Table) Category(row int, field string) string {
	v := t.Cell(row, t.ColumnIndex(field))
	if v == "" {
		return UnknownCategory
	}
	return v
}

// Categories returns the distinct categories (post-substitution) of the
// grouping field, in first-seen order.
func (t *Table) Categories(field string) []string {
	var out []string
	seen := make(map[string]struct{})
	for i := range t.Rows {
		cat := t.Category(i, field)
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	return out
}

// InvalidCoords counts rows with a NaN LON or LAT after extraction.
func (t *Table) InvalidCoords() int {
	n := 0
	for i := range t.Lon {
		if math.IsNaN(t.Lon[i]) || math.IsNaN(t.Lat[i]) {
			n++
		}
	}
	return n
}

// Bounds returns the bounding box of all valid coordinates, or nil when
// no row has valid coordinates.
func (t *Table) Bounds() *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	any := false
	for i := range t.Lon {
		if math.IsNaN(t.Lon[i]) || math.IsNaN(t.Lat[i]) {
			continue
		}
		b.Extend(geom.NewPointFlat(geom.XY, []float64{t.Lon[i], t.Lat[i]}))
		any = true
	}
	if !any {
		return nil
	}
	return b
}

// Points returns the valid coordinates as go-geom points in EPSG:4326.
func (t *Table) Points() []*geom.Point {
	var pts []*geom.Point
	for i := range t.Lon {
		if math.IsNaN(t.Lon[i]) || math.IsNaN(t.Lat[i]) {
			continue
		}
		pts = append(pts, geom.NewPointFlat(geom.XY, []float64{t.Lon[i], t.Lat[i]}).SetSRID(4326))
	}
	return pts
}
