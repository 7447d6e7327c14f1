package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/energy"
	"github.com/lintang-b-s/BuildingEnergy/pkg/featurestore"
	"github.com/lintang-b-s/BuildingEnergy/pkg/osmparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// three ways inside the ulyanovsk box: residential/2, untagged, commercial/"abc"
const scenarioOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="54.300" lon="48.300"/>
  <node id="2" lat="54.300" lon="48.301"/>
  <node id="3" lat="54.301" lon="48.301"/>
  <node id="4" lat="54.301" lon="48.300"/>
  <node id="5" lat="54.310" lon="48.310"/>
  <node id="6" lat="54.310" lon="48.311"/>
  <node id="7" lat="54.311" lon="48.311"/>
  <node id="8" lat="54.320" lon="48.320"/>
  <node id="9" lat="54.320" lon="48.321"/>
  <node id="10" lat="54.321" lon="48.321"/>
  <way id="100">
    <nd ref="1"/><nd ref="2"/><nd ref="3"/><nd ref="4"/><nd ref="1"/>
    <tag k="building" v="residential"/>
    <tag k="building:levels" v="2"/>
  </way>
  <way id="101">
    <nd ref="8"/><nd ref="9"/><nd ref="10"/><nd ref="8"/>
    <tag k="amenity" v="parking"/>
  </way>
  <way id="102">
    <nd ref="5"/><nd ref="6"/><nd ref="7"/><nd ref="5"/>
    <tag k="building" v="commercial"/>
    <tag k="building:levels" v="abc"/>
  </way>
</osm>`

// mixed bag around the box edges, see TestExtractKeepsOnlyStrictlyInside
const edgeOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="54.30" lon="48.30"/>
  <node id="2" lat="54.30" lon="48.31"/>
  <node id="3" lat="54.31" lon="48.31"/>
  <node id="4" lat="54.31" lon="48.30"/>
  <node id="11" lat="54.39" lon="48.10"/>
  <node id="12" lat="54.39" lon="48.21"/>
  <node id="13" lat="54.395" lon="48.21"/>
  <node id="14" lat="54.395" lon="48.10"/>
  <node id="21" lat="55.00" lon="49.00"/>
  <node id="22" lat="55.00" lon="49.01"/>
  <node id="23" lat="55.01" lon="49.01"/>
  <node id="31" lat="54.30" lon="48.49"/>
  <node id="32" lat="54.30" lon="48.60"/>
  <node id="33" lat="54.31" lon="48.60"/>
  <node id="34" lat="54.31" lon="48.49"/>
  <way id="200">
    <nd ref="1"/><nd ref="2"/><nd ref="3"/><nd ref="4"/><nd ref="1"/>
    <tag k="building" v="hospital"/>
    <tag k="building:levels" v="3"/>
  </way>
  <way id="201">
    <nd ref="11"/><nd ref="12"/><nd ref="13"/><nd ref="14"/><nd ref="11"/>
    <tag k="building" v="school"/>
  </way>
  <way id="202">
    <nd ref="21"/><nd ref="22"/><nd ref="23"/><nd ref="21"/>
    <tag k="building" v="industrial"/>
  </way>
  <way id="203">
    <nd ref="31"/><nd ref="32"/><nd ref="33"/><nd ref="34"/><nd ref="31"/>
    <tag k="building" v="retail"/>
  </way>
</osm>`

func writeOSM(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "map.osm")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func ulyanovsk(t *testing.T) Config {
	t.Helper()
	bbox, err := datastructure.NewBoundingBox(48.20, 54.25, 48.50, 54.40)
	require.NoError(t, err)
	return Config{
		BoundingBox: bbox,
		Estimator:   energy.NewEstimator(energy.DefaultRateTable(), 0),
	}
}

func TestExtractScenario(t *testing.T) {
	src, err := osmparser.NewFileSource(writeOSM(t, scenarioOSM))
	require.NoError(t, err)

	ex := NewExtractor(ulyanovsk(t), zaptest.NewLogger(t))
	buildings, report, err := ex.Extract(context.Background(), src)
	require.NoError(t, err)

	require.Len(t, buildings, 2)
	assert.Equal(t, int64(100), buildings[0].GetID())
	assert.Equal(t, "residential", buildings[0].GetType())
	assert.Equal(t, 2, buildings[0].GetLevels())
	assert.Equal(t, 100000.0, buildings[0].GetEnergy())

	assert.Equal(t, int64(102), buildings[1].GetID())
	assert.Equal(t, "commercial", buildings[1].GetType())
	assert.Equal(t, 1, buildings[1].GetLevels())
	assert.Equal(t, 150000.0, buildings[1].GetEnergy())

	assert.Equal(t, 3, report.ScannedWays)
	assert.Equal(t, 2, report.Retained)
	assert.Equal(t, 1, report.SkipCounts[osmparser.SKIP_NOT_BUILDING])
	assert.Equal(t, 1, report.TotalSkipped())
}

func TestExtractKeepsOnlyStrictlyInside(t *testing.T) {
	src, err := osmparser.NewFileSource(writeOSM(t, edgeOSM))
	require.NoError(t, err)

	cfg := ulyanovsk(t)
	buildings, report, err := NewExtractor(cfg, zaptest.NewLogger(t)).Extract(context.Background(), src)
	require.NoError(t, err)

	// 201 and 203 straddle the west and east edges but their centroids fall outside, 202 is far away.
	require.Len(t, buildings, 1)
	assert.Equal(t, int64(200), buildings[0].GetID())
	assert.Equal(t, 3*500000.0, buildings[0].GetEnergy())
	assert.Equal(t, 3, report.SkipCounts[osmparser.SKIP_OUTSIDE_BBOX])

	for _, b := range buildings {
		assert.True(t, cfg.BoundingBox.ContainsStrict(b.Centroid()))
		assert.GreaterOrEqual(t, b.GetEnergy(), 0.0)
		assert.Equal(t, cfg.Estimator.Estimate(b.GetType(), b.GetLevels()), b.GetEnergy())
	}

	outside := make(map[int64]bool)
	for _, s := range report.Skipped {
		if s.GetReason() == osmparser.SKIP_OUTSIDE_BBOX {
			outside[s.GetWayID()] = true
		}
	}
	assert.Equal(t, map[int64]bool{201: true, 202: true, 203: true}, outside)
}

func TestExtractWithCustomRateTable(t *testing.T) {
	src, err := osmparser.NewFileSource(writeOSM(t, scenarioOSM))
	require.NoError(t, err)

	table, err := energy.NewRateTable(map[string]float64{"residential": 10}, 1)
	require.NoError(t, err)
	cfg := ulyanovsk(t)
	cfg.Estimator = energy.NewEstimator(table, 0)

	buildings, _, err := NewExtractor(cfg, zaptest.NewLogger(t)).Extract(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, buildings, 2)
	assert.Equal(t, 20.0, buildings[0].GetEnergy())
	assert.Equal(t, 1.0, buildings[1].GetEnergy())
}

func TestRunWritesCollection(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ulyanovsk_buildings.geojson")

	ex := NewExtractor(ulyanovsk(t), zaptest.NewLogger(t))
	report, err := ex.Run(context.Background(), writeOSM(t, scenarioOSM), out)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Retained)

	got, err := featurestore.Read(out)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 100000.0, got[0].GetEnergy())
	assert.Equal(t, 150000.0, got[1].GetEnergy())
}

func TestRunMissingInputIsFatal(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.geojson")

	_, err := NewExtractor(ulyanovsk(t), zaptest.NewLogger(t)).Run(context.Background(),
		filepath.Join(t.TempDir(), "missing.osm.pbf"), out)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}
