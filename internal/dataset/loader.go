package dataset

import (
	"context"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/wiendata/inselmap/internal/fetcher"
)

// LoadOptions configures dataset loading.
type LoadOptions struct {
	Encoding string // passed through to the CSV parser ("latin1" transcodes)
}

// Load fetches the CSV at url, parses it into a Table, profiles data
// quality, and derives the LON/LAT columns from SHAPE.
//
// Fetch failures, CSV parse failures, a missing SHAPE column, and a
// SHAPE column with no parseable value are fatal and propagate. Rows
// whose individual SHAPE cell fails to parse keep NaN coordinates and
// only produce a warning; they are never dropped.
func Load(ctx context.Context, f fetcher.Fetcher, url string, opts LoadOptions) (*Table, *Report, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		zap.L().Error("dataset fetch failed", zap.String("url", url), zap.Error(err))
		return nil, nil, eris.Wrapf(err, "dataset: fetch %s", url)
	}
	defer body.Close() //nolint:errcheck

	return LoadReader(ctx, body, url, opts)
}

// LoadReader parses an already-fetched CSV payload. Callers that hold a
// response body (for example a conditional re-fetch) feed it here so the
// payload is downloaded exactly once.
func LoadReader(ctx context.Context, body io.Reader, url string, opts LoadOptions) (*Table, *Report, error) {
	log := zap.L().With(zap.String("component", "dataset.loader"))

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, body, fetcher.CSVOptions{
		Encoding:  opts.Encoding,
		HasHeader: true,
		HeaderCh:  headerCh,
	})

	table := &Table{SourceURL: url}
	for row := range rowCh {
		table.Rows = append(table.Rows, row)
	}
	for err := range errCh {
		if err != nil {
			log.Error("dataset parse failed", zap.String("url", url), zap.Error(err))
			return nil, nil, eris.Wrapf(err, "dataset: parse %s", url)
		}
	}
	select {
	case table.Header = <-headerCh:
	default:
		return nil, nil, eris.Errorf("dataset: %s returned an empty payload", url)
	}

	log.Info("dataset loaded",
		zap.String("url", url),
		zap.Int("rows", table.NumRows()),
		zap.Int("cols", table.NumCols()),
		zap.Strings("columns", table.Header),
	)

	report := Profile(table)
	log.Info("quality check",
		zap.Int("missing_cells", report.MissingCells),
		zap.Int("duplicate_rows", report.DuplicateRows),
	)

	if err := extractCoordinates(table); err != nil {
		log.Error("coordinate extraction failed", zap.Error(err))
		return nil, nil, err
	}
	log.Info("coordinates extracted")

	report.InvalidCoords = table.InvalidCoords()
	if report.InvalidCoords > 0 {
		// Detection only: bad rows stay in the table.
		log.Warn("invalid coordinates present (NaN)",
			zap.Int("rows", report.InvalidCoords),
		)
	}

	return table, report, nil
}

// extractCoordinates derives LON/LAT from the SHAPE column. A missing
// column, or a column where not a single non-empty cell parses, is fatal.
func extractCoordinates(t *Table) error {
	shapeIdx := t.ColumnIndex(ColumnShape)
	if shapeIdx < 0 {
		return eris.Errorf("dataset: column %s not found", ColumnShape)
	}

	t.Lon = make([]float64, t.NumRows())
	t.Lat = make([]float64, t.NumRows())

	parsed, nonEmpty := 0, 0
	for i := range t.Rows {
		cell := t.Cell(i, shapeIdx)
		if cell != "" {
			nonEmpty++
		}
		lon, lat, ok := ExtractPoint(cell)
		if !ok {
			t.Lon[i] = math.NaN()
			t.Lat[i] = math.NaN()
			continue
		}
		t.Lon[i] = lon
		t.Lat[i] = lat
		parsed++
	}

	if nonEmpty > 0 && parsed == 0 {
		return eris.Errorf("dataset: no %s value matched the coordinate pattern", ColumnShape)
	}

	return nil
}
