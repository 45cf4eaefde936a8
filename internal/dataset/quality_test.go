package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Counts(t *testing.T) {
	tbl := &Table{
		SourceURL: "https://example.com/data.csv",
		Header:    []string{"FID", "SHAPE", "TYP"},
		Rows: [][]string{
			{"1", "(16.4 48.2)", "1"},
			{"2", "", "1"},
			{"2", "", "1"}, // duplicate of row 2
			{"3", "(16.5 48.3)", ""},
		},
	}

	r := Profile(tbl)
	assert.Equal(t, 4, r.Rows)
	assert.Equal(t, 3, r.Cols)
	assert.Equal(t, 3, r.MissingCells)
	assert.Equal(t, 1, r.DuplicateRows)
	require.Len(t, r.Columns, 3)
	assert.Equal(t, "FID", r.Columns[0].Name)
	assert.Equal(t, TypeInt, r.Columns[0].Type)
	assert.Equal(t, TypeString, r.Columns[1].Type)
	assert.Equal(t, TypeInt, r.Columns[2].Type)
}

func TestProfile_DuplicatesCountOccurrencesBeyondFirst(t *testing.T) {
	tbl := &Table{
		Header: []string{"A"},
		Rows:   [][]string{{"x"}, {"x"}, {"x"}, {"y"}},
	}
	r := Profile(tbl)
	assert.Equal(t, 2, r.DuplicateRows)
}

func TestProfile_NoDuplicates(t *testing.T) {
	tbl := &Table{
		Header: []string{"A", "B"},
		Rows:   [][]string{{"1", "2"}, {"2", "1"}},
	}
	assert.Equal(t, 0, Profile(tbl).DuplicateRows)
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   ColumnType
	}{
		{"ints", []string{"1", "-2", "30"}, TypeInt},
		{"ints with gaps", []string{"1", "", "3"}, TypeInt},
		{"floats", []string{"1.5", "2", "-0.25"}, TypeFloat},
		{"bools", []string{"true", "False", "TRUE"}, TypeBool},
		{"strings", []string{"Play", "Sport"}, TypeString},
		{"mixed", []string{"1", "x"}, TypeString},
		{"all empty", []string{"", ""}, TypeString},
		{"empty slice", nil, TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(tt.values))
		})
	}
}

func TestSummary(t *testing.T) {
	r := &Report{
		Rows:          10,
		Cols:          2,
		Columns:       []ColumnProfile{{Name: "SHAPE", Type: TypeString}, {Name: "TYP", Type: TypeInt}},
		MissingCells:  3,
		DuplicateRows: 1,
	}
	s := r.Summary()
	assert.Contains(t, s, "10 rows, 2 columns")
	assert.Contains(t, s, "SHAPE, TYP")
	assert.Contains(t, s, "Missing cells: 3")
	assert.Contains(t, s, "Duplicate rows: 1")
	assert.NotContains(t, s, "Invalid coordinates")

	r.InvalidCoords = 2
	assert.Contains(t, r.Summary(), "Invalid coordinates (NaN): 2")
}
