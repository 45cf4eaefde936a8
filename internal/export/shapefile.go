package export

import (
	"math"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/wiendata/inselmap/internal/dataset"
)

// WriteShapefile writes the valid facility points to an ESRI shapefile
// with a CATEGORY attribute. Rows with NaN coordinates cannot be
// represented as points and are skipped.
func WriteShapefile(tbl *dataset.Table, path string) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	defer w.Close() //nolint:errcheck

	fields := []shp.Field{
		shp.StringField("CATEGORY", 64),
	}
	w.SetFields(fields)

	field := tbl.CategoryField()
	row := 0
	for i := range tbl.Rows {
		if math.IsNaN(tbl.Lon[i]) || math.IsNaN(tbl.Lat[i]) {
			continue
		}
		w.Write(&shp.Point{X: tbl.Lon[i], Y: tbl.Lat[i]})
		if err := w.WriteAttribute(row, 0, tbl.Category(i, field)); err != nil {
			return eris.Wrap(err, "export: write shapefile attribute")
		}
		row++
	}

	return nil
}
