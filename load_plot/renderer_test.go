package load_plot

import (
	"bytes"
	"image/png"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
)

func smallOptions(output string) Options {
	options := DefaultOptions()
	options.Output = output
	options.DPI = 20
	return options
}

func TestDefaultSeries_FinalAnnotation(t *testing.T) {
	series := DefaultSeries()
	require.NoError(t, series.Validate())
	assert.Equal(t, 22, series.Len())

	users, latency := series.Last()
	assert.Equal(t, 2000.0, users)
	assert.Equal(t, "3756.68ms", AnnotationText(latency))
}

func TestSeries_Validate(t *testing.T) {
	assert.ErrorIs(t, Series{}.Validate(), ErrEmptySeries)
	assert.ErrorIs(t, Series{Users: []float64{1, 2}, LatencyMs: []float64{1}}.Validate(), ErrSeriesLength)
	assert.NoError(t, Series{Users: []float64{1}, LatencyMs: []float64{1}}.Validate())
}

func TestNewChart_Layout(t *testing.T) {
	chart, err := NewChart(DefaultSeries())
	require.NoError(t, err)
	p := chart.Plot

	assert.Equal(t, chartTitle, p.Title.Text)
	assert.Equal(t, xAxisLabel, p.X.Label.Text)
	assert.Equal(t, yAxisLabel, p.Y.Label.Text)
	assert.Equal(t, 0.0, p.X.Min)
	assert.Equal(t, 2100.0, p.X.Max)
	assert.Equal(t, 0.0, p.Y.Min)
	assert.Equal(t, 4000.0, p.Y.Max)
}

func TestNewChart_AnnotationPlacement(t *testing.T) {
	chart, err := NewChart(DefaultSeries())
	require.NoError(t, err)

	label, pointer := chart.Annotation, chart.arrow
	require.NotNil(t, label)
	require.NotNil(t, pointer)

	assert.Equal(t, []string{"3756.68ms"}, label.Labels)
	assert.InDelta(t, 1600, label.XYs[0].X, 1e-9)
	assert.InDelta(t, 3856.68, label.XYs[0].Y, 1e-9)
	assert.Equal(t, plotter.XY{X: 2000, Y: 3756.68}, pointer.To)
	assert.Equal(t, label.XYs[0], pointer.From)
}

func TestRenderer_WritesPNG(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0755))

	options := smallOptions("/out/scalability_plot.png")
	require.NoError(t, NewRenderer(fs).Render(DefaultSeries(), options))

	data, err := afero.ReadFile(fs, options.Output)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.InDelta(t, 200, img.Bounds().Dx(), 1)
	assert.InDelta(t, 120, img.Bounds().Dy(), 1)

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary image must be renamed away")
	assert.Equal(t, os.FileMode(0644), entries[0].Mode().Perm())
}

func TestRenderer_MismatchedSeriesWritesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0755))

	series := Series{Users: []float64{50, 100, 150}, LatencyMs: []float64{167.5, 290.92}}
	err := NewRenderer(fs).Render(series, smallOptions("/out/scalability_plot.png"))
	assert.ErrorIs(t, err, ErrSeriesLength)

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRenderer_RejectsInvalidSize(t *testing.T) {
	options := smallOptions("/out/plot.png")
	options.DPI = 0
	assert.Error(t, NewRenderer(afero.NewMemMapFs()).Render(DefaultSeries(), options))
}
