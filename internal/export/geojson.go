package export

import (
	"encoding/json"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/wiendata/inselmap/internal/dataset"
)

// WriteGeoJSON writes the table as a FeatureCollection of point
// features in EPSG:4326. Each feature carries the row's source columns
// plus its resolved category as properties. Rows with NaN coordinates
// have no geometry to encode and are skipped.
func WriteGeoJSON(tbl *dataset.Table, w io.Writer) error {
	field := tbl.CategoryField()

	fc := &geojson.FeatureCollection{}
	for i := range tbl.Rows {
		if math.IsNaN(tbl.Lon[i]) || math.IsNaN(tbl.Lat[i]) {
			continue
		}

		props := make(map[string]any, len(tbl.Header)+1)
		for col, name := range tbl.Header {
			props[name] = tbl.Cell(i, col)
		}
		props["category"] = tbl.Category(i, field)

		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{tbl.Lon[i], tbl.Lat[i]}).SetSRID(4326),
			Properties: props,
		})
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(fc); err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	return nil
}
