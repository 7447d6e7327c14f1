package chart

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBarChart(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBarChart(&buf, "Building types (top-2)",
		[]string{"residential", "commercial", "other"}, []float64{5, 3, 3},
		Options{WidthInch: 4, HeightInch: 3, DPI: 50})
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 150, cfg.Height)
}

func TestWriteBarChartInvalid(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteBarChart(&buf, "t", nil, nil, Options{}), ErrNoData)
	assert.Error(t, WriteBarChart(&buf, "t", []string{"a"}, []float64{1, 2}, Options{}))
}

func TestWriteHistogramsStacksPanels(t *testing.T) {
	var buf bytes.Buffer
	panels := []HistogramPanel{
		{Title: "log10", XLabel: "log10(energy density)", Values: []float64{1, 2, 2, 3, 3, 3}, Bins: 3},
		{Title: "trimmed", XLabel: "energy density", Values: []float64{10, 20, 30}},
	}
	require.NoError(t, WriteHistograms(&buf, panels, Options{WidthInch: 4, DPI: 50}))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 500, cfg.Height)
}

func TestWriteHistogramsEmptyPanel(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHistograms(&buf, []HistogramPanel{{Title: "empty"}}, Options{DPI: 50})
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorIs(t, WriteHistograms(&buf, nil, Options{}), ErrNoData)
}

func TestSaveBarChart(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "building_types_distribution.png")

	require.NoError(t, SaveBarChart(file, "types", []string{"a", "b"}, []float64{2, 1},
		Options{WidthInch: 2, HeightInch: 2, DPI: 40}))

	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.DecodeConfig(f)
	assert.NoError(t, err)

	// nothing written on failure
	bad := filepath.Join(dir, "bad.png")
	assert.Error(t, SaveBarChart(bad, "types", nil, nil, Options{}))
	_, err = os.Stat(bad)
	assert.True(t, os.IsNotExist(err))
}
