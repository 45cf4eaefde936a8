package export

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/wiendata/inselmap/internal/dataset"
)

// WriteXLSX writes the table to an XLSX workbook with a single sheet.
// NaN coordinates become empty cells.
func WriteXLSX(tbl *dataset.Table, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Facilities")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, name := range tbl.Header {
		header.AddCell().SetString(name)
	}
	header.AddCell().SetString("LON")
	header.AddCell().SetString("LAT")

	for i := range tbl.Rows {
		row := sheet.AddRow()
		for col := range tbl.Header {
			row.AddCell().SetString(tbl.Cell(i, col))
		}
		addCoordCell(row, tbl.Lon[i])
		addCoordCell(row, tbl.Lat[i])
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func addCoordCell(row *xlsx.Row, v float64) {
	cell := row.AddCell()
	if math.IsNaN(v) {
		return
	}
	cell.SetFloat(v)
}
