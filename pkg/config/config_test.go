package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lintang-b-s/BuildingEnergy/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Flags("test"), []string{"--config", writeConfig(t, "{}\n")}, "extract")
	require.NoError(t, err)

	assert.Equal(t, DEFAULT_MAP_FILE, cfg.Extract.Input)
	assert.Equal(t, DEFAULT_BUILDINGS_FILE, cfg.Extract.Output)
	assert.Equal(t, BBoxConfig{MinLon: 48.20, MinLat: 54.25, MaxLon: 48.50, MaxLat: 54.40}, cfg.Extract.BBox)
	assert.Equal(t, DEFAULT_TOP_N, cfg.Types.TopN)
	assert.Equal(t, DEFAULT_BINS, cfg.Density.Bins)
	assert.Equal(t, DEFAULT_PERCENTILE, cfg.Density.Percentile)
	assert.Equal(t, geo.AREA_MERCATOR, cfg.Density.Method())
	assert.Equal(t, DEFAULT_DPI, cfg.Types.Chart.DPI)
	assert.Equal(t, DEFAULT_API_TIMEOUT, cfg.Server.Timeout)

	est, err := cfg.Energy.Estimator()
	require.NoError(t, err)
	assert.Equal(t, 100000.0, est.Estimate("residential", 2))
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	file := writeConfig(t, `
types:
  top_n: 5
density:
  area_method: geodesic
  percentile: 0.9
server:
  timeout: 5s
energy:
  fallback_rate: 10
  rates:
    residential: 1
`)
	t.Setenv("BEE_TYPES_TOP_N", "6")
	t.Setenv("BEE_DENSITY_BINS", "20")

	cfg, err := Load(Flags("typeanalyzer"), []string{"--config", file, "--top_n", "3", "--input", "in.geojson"}, "types")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Types.TopN, "flag wins over env and file")
	assert.Equal(t, "in.geojson", cfg.Types.Input)
	assert.Equal(t, DEFAULT_BUILDINGS_FILE, cfg.Density.Input, "--input only overrides the command section")
	assert.Equal(t, 20, cfg.Density.Bins, "env wins over default")
	assert.Equal(t, geo.AREA_GEODESIC, cfg.Density.Method())
	assert.Equal(t, 0.9, cfg.Density.Percentile)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)

	est, err := cfg.Energy.Estimator()
	require.NoError(t, err)
	assert.Equal(t, 2.0, est.Estimate("residential", 2))
	assert.Equal(t, 10.0, est.Estimate("hospital", 1))
}

func TestLoadPipelineOutputFeedsAnalyzers(t *testing.T) {
	cfg, err := Load(Flags("pipeline"), []string{"--config", writeConfig(t, "{}\n"), "--output", "out.geojson"}, "pipeline")
	require.NoError(t, err)
	assert.Equal(t, "out.geojson", cfg.Extract.Output)
	assert.Equal(t, "out.geojson", cfg.Types.Input)
	assert.Equal(t, "out.geojson", cfg.Density.Input)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{name: "top_n zero", yaml: "types:\n  top_n: 0\n"},
		{name: "percentile above one", yaml: "density:\n  percentile: 1.5\n"},
		{name: "unknown area method", yaml: "density:\n  area_method: albers\n"},
		{name: "inverted bbox", yaml: "extract:\n  bbox:\n    min_lon: 48.5\n    max_lon: 48.2\n"},
		{name: "negative rate", yaml: "energy:\n  rates:\n    residential: -1\n"},
		{name: "zero bins", yaml: "density:\n  bins: 0\n"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEstimatorKeepsFallbackRateWithoutRates(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "energy:\n  fallback_rate: 7000\n"))
	require.NoError(t, err)

	est, err := cfg.Energy.Estimator()
	require.NoError(t, err)
	assert.Equal(t, 14000.0, est.Estimate("garage", 2))
	assert.Equal(t, 100000.0, est.Estimate("residential", 2))
}
