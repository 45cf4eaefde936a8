package export

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/wiendata/inselmap/internal/dataset"
)

// WriteCSV writes the table with the derived LON/LAT columns appended.
// NaN coordinates become empty cells.
func WriteCSV(tbl *dataset.Table, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, tbl.Header...), "LON", "LAT")
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}

	for i := range tbl.Rows {
		record := make([]string, len(tbl.Header), len(tbl.Header)+2)
		for col := range tbl.Header {
			record[col] = tbl.Cell(i, col)
		}
		record = append(record, formatCoord(tbl.Lon[i]), formatCoord(tbl.Lat[i]))
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func formatCoord(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
