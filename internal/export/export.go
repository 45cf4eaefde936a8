// Package export writes the augmented facility table to interchange formats.
package export

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/wiendata/inselmap/internal/dataset"
)

// Formats supported by Write.
const (
	FormatCSV       = "csv"
	FormatXLSX      = "xlsx"
	FormatGeoJSON   = "geojson"
	FormatShapefile = "shp"
)

// Write dispatches on format and writes the table to path. The path
// should not carry an extension; the format's extension is appended.
func Write(tbl *dataset.Table, format, path string) (string, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		path += ".csv"
		f, err := os.Create(path)
		if err != nil {
			return "", eris.Wrapf(err, "export: create %s", path)
		}
		defer f.Close() //nolint:errcheck
		return path, WriteCSV(tbl, f)
	case FormatXLSX:
		path += ".xlsx"
		return path, WriteXLSX(tbl, path)
	case FormatGeoJSON:
		path += ".geojson"
		f, err := os.Create(path)
		if err != nil {
			return "", eris.Wrapf(err, "export: create %s", path)
		}
		defer f.Close() //nolint:errcheck
		return path, WriteGeoJSON(tbl, f)
	case FormatShapefile:
		path += ".shp"
		return path, WriteShapefile(tbl, path)
	default:
		return "", eris.Errorf("export: unknown format %q", format)
	}
}
