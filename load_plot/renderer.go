package load_plot

import (
	"bytes"
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/meysamhadeli/codesnap/utils"
	"github.com/spf13/afero"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	chartTitle  = "Scalability Test: Load vs. Latency"
	xAxisLabel  = "Concurrent Users (Simulated)"
	yAxisLabel  = "Average Response Time (ms)"
	legendLabel = "Avg Response Time"

	xMax = 2100
	yMax = 4000

	// Offset of the annotation text from the final sample, in data units.
	annotationOffsetX = -400
	annotationOffsetY = 100
)

var seriesColor = color.RGBA{R: 0x00, G: 0x7a, B: 0xcc, A: 0xff}

// Options controls where and how large the chart is written.
type Options struct {
	Output       string  `mapstructure:"output"`
	DPI          int     `mapstructure:"dpi"`
	WidthInches  float64 `mapstructure:"width_inches"`
	HeightInches float64 `mapstructure:"height_inches"`
}

func DefaultOptions() Options {
	return Options{
		Output:       "scalability_plot.png",
		DPI:          300,
		WidthInches:  10,
		HeightInches: 6,
	}
}

// Renderer writes load-test charts as PNG images.
type Renderer struct {
	fs afero.Fs
}

func NewRenderer(fs afero.Fs) *Renderer {
	return &Renderer{fs: fs}
}

// AnnotationText formats the latency printed next to the final sample.
func AnnotationText(latencyMs float64) string {
	return fmt.Sprintf("%.2fms", latencyMs)
}

// Chart is a built plot together with its annotation parts.
type Chart struct {
	Plot       *plot.Plot
	Annotation *plotter.Labels
	arrow      *arrow
}

// NewChart builds the latency-over-load chart for series.
func NewChart(series Series) (*Chart, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = chartTitle
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.TextStyle.Font.Weight = xfont.WeightBold
	p.X.Label.Text = xAxisLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.Text = yAxisLabel
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)

	p.X.Min, p.X.Max = 0, xMax
	p.Y.Min, p.Y.Max = 0, yMax

	grid := plotter.NewGrid()
	for _, style := range []*draw.LineStyle{&grid.Vertical, &grid.Horizontal} {
		style.Width = vg.Points(0.5)
		style.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	}

	line, points, err := plotter.NewLinePoints(series)
	if err != nil {
		return nil, fmt.Errorf("failed to build line series: %w", err)
	}
	line.Color = seriesColor
	line.Width = vg.Points(2)
	points.Shape = draw.BoxGlyph{}
	points.Color = seriesColor
	points.Radius = vg.Points(3)

	lastUsers, lastLatency := series.Last()
	textAt := plotter.XY{X: lastUsers + annotationOffsetX, Y: lastLatency + annotationOffsetY}

	label, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{textAt},
		Labels: []string{AnnotationText(lastLatency)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build annotation: %w", err)
	}

	pointer := newArrow(textAt, plotter.XY{X: lastUsers, Y: lastLatency})

	p.Add(grid, line, points, pointer, label)
	p.Legend.Add(legendLabel, line, points)
	p.Legend.Top = true
	p.Legend.Left = true

	return &Chart{Plot: p, Annotation: label, arrow: pointer}, nil
}

// Render draws series and writes it to options.Output. Nothing is written on error.
func (r *Renderer) Render(series Series, options Options) error {
	if options.Output == "" {
		return fmt.Errorf("plot output path is empty")
	}
	if options.DPI <= 0 || options.WidthInches <= 0 || options.HeightInches <= 0 {
		return fmt.Errorf("invalid plot size: %.1fx%.1f in at %d dpi", options.WidthInches, options.HeightInches, options.DPI)
	}

	chart, err := NewChart(series)
	if err != nil {
		return err
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(options.WidthInches)*vg.Inch, vg.Length(options.HeightInches)*vg.Inch),
		vgimg.UseDPI(options.DPI),
	)
	chart.Plot.Draw(draw.New(canvas))

	var buffer bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(&buffer); err != nil {
		return fmt.Errorf("failed to encode plot: %w", err)
	}

	return r.writeAtomically(options.Output, buffer.Bytes())
}

func (r *Renderer) writeAtomically(path string, data []byte) error {
	tmp, err := afero.TempFile(r.fs, filepath.Dir(path), ".codesnap-*.png.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary image: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("failed to write plot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("failed to close plot: %w", err)
	}
	if err := utils.CommitTempFile(r.fs, tmpName, path); err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
