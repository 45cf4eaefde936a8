// Package chart renders the categorized facility scatter plot.
package chart

import (
	"bytes"
	"image/color"
	"math"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/wiendata/inselmap/internal/dataset"
)

// Options configures chart rendering.
type Options struct {
	Title    string
	WidthCm  float64
	HeightCm float64
}

const (
	pointRadius = vg.Length(4) // points
	fillAlpha   = 178          // ~0.7
)

// Series is one category's points in plot order.
type Series struct {
	Name   string
	Points plotter.XYs
}

// BuildSeries groups the table's rows into per-category point series.
// The grouping field is TYP_TXT unless it collapses to a single value,
// in which case TYP is used; empty categories become "Unknown". Rows
// with NaN coordinates are skipped. Order is first-seen category order.
func BuildSeries(tbl *dataset.Table) []Series {
	field := tbl.CategoryField()
	cats := tbl.Categories(field)

	byName := make(map[string]*Series, len(cats))
	out := make([]Series, len(cats))
	for i, cat := range cats {
		out[i] = Series{Name: cat}
		byName[cat] = &out[i]
	}

	for i := range tbl.Rows {
		if math.IsNaN(tbl.Lon[i]) || math.IsNaN(tbl.Lat[i]) {
			continue
		}
		s := byName[tbl.Category(i, field)]
		s.Points = append(s.Points, plotter.XY{X: tbl.Lon[i], Y: tbl.Lat[i]})
	}

	return out
}

// RenderPNG renders the categorized scatter plot and returns PNG bytes.
func RenderPNG(tbl *dataset.Table, opts Options) ([]byte, error) {
	if opts.WidthCm <= 0 {
		opts.WidthCm = 30
	}
	if opts.HeightCm <= 0 {
		opts.HeightCm = 18
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Lon"
	p.Y.Label.Text = "Lat"

	grid := plotter.NewGrid()
	gridStyle := draw.LineStyle{
		Color:  color.NRGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff},
		Width:  vg.Points(0.5),
		Dashes: []vg.Length{vg.Points(1), vg.Points(3)},
	}
	grid.Vertical = gridStyle
	grid.Horizontal = gridStyle
	p.Add(grid)

	legend := plot.NewLegend()
	legend.Add("Category") // heading entry, no thumbnail

	series := BuildSeries(tbl)
	for i, s := range series {
		fill, err := plotter.NewScatter(s.Points)
		if err != nil {
			return nil, eris.Wrapf(err, "chart: scatter %q", s.Name)
		}
		fill.GlyphStyle = draw.GlyphStyle{
			Shape:  draw.CircleGlyph{},
			Radius: pointRadius,
			Color:  withAlpha(CategoryColor(i), fillAlpha),
		}

		outline, err := plotter.NewScatter(s.Points)
		if err != nil {
			return nil, eris.Wrapf(err, "chart: outline %q", s.Name)
		}
		outline.GlyphStyle = draw.GlyphStyle{
			Shape:  draw.RingGlyph{},
			Radius: pointRadius,
			Color:  color.NRGBA{A: 0xff},
		}

		p.Add(fill, outline)
		legend.Add(s.Name, fill)
	}

	zap.L().Debug("rendering chart",
		zap.Int("categories", len(series)),
		zap.Float64("width_cm", opts.WidthCm),
		zap.Float64("height_cm", opts.HeightCm),
	)

	img := vgimg.New(
		vg.Length(opts.WidthCm)*vg.Centimeter,
		vg.Length(opts.HeightCm)*vg.Centimeter,
	)
	dc := draw.New(img)

	// Draw the legend along the right edge and shrink the plot area so
	// the legend is never clipped.
	legend.Top = true
	r := legend.Rectangle(dc)
	legendWidth := r.Max.X - r.Min.X
	legend.YOffs = -p.Title.TextStyle.FontExtents().Height
	legend.Draw(dc)

	dc = draw.Crop(dc, 0, -legendWidth-vg.Millimeter, 0, 0)
	p.Draw(dc)

	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, eris.Wrap(err, "chart: encode png")
	}
	return buf.Bytes(), nil
}

// WritePNG renders the chart and writes it to path.
func WritePNG(tbl *dataset.Table, opts Options, path string) error {
	data, err := RenderPNG(tbl, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "chart: write %s", path)
	}
	return nil
}
