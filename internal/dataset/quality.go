package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnType is the inferred scalar type of a source column.
type ColumnType string

const (
	TypeInt    ColumnType = "int64"
	TypeFloat  ColumnType = "float64"
	TypeBool   ColumnType = "bool"
	TypeString ColumnType = "string"
)

// ColumnProfile pairs a column name with its inferred type.
type ColumnProfile struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Report holds the quality diagnostics of a loaded table.
// MissingCells and DuplicateRows are computed over the source columns
// only, before coordinate extraction; InvalidCoords is filled in by the
// loader after extraction as a separate check.
type Report struct {
	SourceURL     string          `json:"source_url"`
	Rows          int             `json:"rows"`
	Cols          int             `json:"cols"`
	Columns       []ColumnProfile `json:"columns"`
	MissingCells  int             `json:"missing_cells"`
	DuplicateRows int             `json:"duplicate_rows"`
	InvalidCoords int             `json:"invalid_coords"`
}

// Profile computes quality diagnostics over the table's source columns.
func Profile(t *Table) *Report {
	r := &Report{
		SourceURL: t.SourceURL,
		Rows:      t.NumRows(),
		Cols:      t.NumCols(),
	}

	for col, name := range t.Header {
		values := make([]string, t.NumRows())
		for row := range t.Rows {
			v := t.Cell(row, col)
			values[row] = v
			if v == "" {
				r.MissingCells++
			}
		}
		r.Columns = append(r.Columns, ColumnProfile{Name: name, Type: InferType(values)})
	}

	// Exact duplicates: each occurrence beyond the first counts once.
	seen := make(map[string]struct{}, t.NumRows())
	for row := range t.Rows {
		key := rowKey(t, row)
		if _, ok := seen[key]; ok {
			r.DuplicateRows++
			continue
		}
		seen[key] = struct{}{}
	}

	return r
}

// rowKey builds a collision-safe key over the row's cells, normalized to
// the header width so ragged duplicates compare equal.
func rowKey(t *Table, row int) string {
	var sb strings.Builder
	for col := range t.Header {
		cell := t.Cell(row, col)
		sb.WriteString(strconv.Itoa(len(cell)))
		sb.WriteByte(':')
		sb.WriteString(cell)
	}
	return sb.String()
}

// InferType infers a column's scalar type from its values. Empty cells
// do not veto a type; a column of only empty cells is a string column.
func InferType(values []string) ColumnType {
	isInt, isFloat, isBool := true, true, true
	nonEmpty := 0

	for _, v := range values {
		if v == "" {
			continue
		}
		nonEmpty++
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			switch strings.ToLower(v) {
			case "true", "false":
			default:
				isBool = false
			}
		}
	}

	switch {
	case nonEmpty == 0:
		return TypeString
	case isInt:
		return TypeInt
	case isFloat:
		return TypeFloat
	case isBool:
		return TypeBool
	default:
		return TypeString
	}
}

// Summary renders the report as the human-readable block the validate
// and run commands print.
func (r *Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Loaded: %d rows, %d columns\n", r.Rows, r.Cols)
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	fmt.Fprintf(&sb, "Columns: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&sb, "Missing cells: %d\n", r.MissingCells)
	fmt.Fprintf(&sb, "Duplicate rows: %d\n", r.DuplicateRows)
	sb.WriteString("Column types:\n")
	for _, c := range r.Columns {
		fmt.Fprintf(&sb, "  %-16s %s\n", c.Name, c.Type)
	}
	if r.InvalidCoords > 0 {
		fmt.Fprintf(&sb, "Invalid coordinates (NaN): %d\n", r.InvalidCoords)
	}
	return sb.String()
}
