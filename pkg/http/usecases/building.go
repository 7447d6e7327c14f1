package usecases

import (
	"errors"
	"io"

	"github.com/lintang-b-s/BuildingEnergy/pkg/analyzer"
	"github.com/lintang-b-s/BuildingEnergy/pkg/chart"
	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/geo"
	"github.com/lintang-b-s/BuildingEnergy/pkg/spatialindex"
	"github.com/lintang-b-s/BuildingEnergy/pkg/util"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

const MAX_BUILDINGS_PER_QUERY = 5000

// BuildingService. read-only queries over one loaded building collection.
type BuildingService struct {
	log          *zap.Logger
	buildings    []datastructure.Building
	spatialIndex SpatialIndex
	density      analyzer.DensityResult
}

// NewBuildingService. builds the centroid index and precomputes areas and densities once.
func NewBuildingService(log *zap.Logger, buildings []datastructure.Building, method geo.AreaMethod,
	workers int) *BuildingService {
	rt := spatialindex.NewRtree()
	rt.Build(buildings, log)

	density := analyzer.ComputeDensities(buildings, method, workers)
	log.Info("building service ready",
		zap.Int("buildings", len(buildings)),
		zap.Int("densities", len(density.Densities)),
		zap.Int("excluded", density.Excluded))

	return &BuildingService{
		log:          log,
		buildings:    buildings,
		spatialIndex: rt,
		density:      density,
	}
}

// BuildingsInBoundingBox. buildings whose centroid is strictly inside bbox, in collection order.
func (bs *BuildingService) BuildingsInBoundingBox(bbox datastructure.BoundingBox, limit int) []datastructure.Building {
	if limit <= 0 || limit > MAX_BUILDINGS_PER_QUERY {
		limit = MAX_BUILDINGS_PER_QUERY
	}
	entries := bs.spatialIndex.SearchStrict(bbox.Bound(), limit)
	out := make([]datastructure.Building, 0, len(entries))
	for _, e := range entries {
		out = append(out, bs.buildings[e.GetIndex()])
	}
	return out
}

func (bs *BuildingService) TypeRanking(topN int) ([]analyzer.TypeCount, error) {
	ranking, err := analyzer.TypeDistribution(bs.buildings, topN)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "invalid top_n")
	}
	return ranking, nil
}

func (bs *BuildingService) DensitySummary(percentile float64) (analyzer.Summary, int, error) {
	summary, err := analyzer.Summarize(bs.density.Densities, percentile)
	switch {
	case errors.Is(err, analyzer.ErrEmptySeries):
		return analyzer.Summary{}, 0, util.WrapErrorf(err, util.ErrNotFound, "no building has a positive area")
	case errors.Is(err, analyzer.ErrInvalidPercentile):
		return analyzer.Summary{}, 0, util.WrapErrorf(err, util.ErrBadParamInput, "invalid percentile")
	case err != nil:
		return analyzer.Summary{}, 0, util.WrapErrorf(err, util.ErrInternalServerError, "%s", util.MessageInternalServerError)
	}
	return summary, bs.density.Excluded, nil
}

func (bs *BuildingService) Heatmap(cellSize float64) (*geojson.FeatureCollection, error) {
	cells, err := analyzer.BuildHeatmap(bs.buildings, bs.density.Areas, cellSize, bs.spatialIndex)
	if err != nil {
		if errors.Is(err, analyzer.ErrInvalidCellSize) {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "invalid cell_size")
		}
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "%s", util.MessageInternalServerError)
	}
	return analyzer.HeatmapFeatureCollection(cells), nil
}

// WriteTypesChart. PNG bar chart of the type ranking.
func (bs *BuildingService) WriteTypesChart(w io.Writer, topN, dpi int) error {
	ranking, err := bs.TypeRanking(topN)
	if err != nil {
		return err
	}
	if len(ranking) == 0 {
		return util.WrapErrorf(chart.ErrNoData, util.ErrNotFound, "no buildings loaded")
	}
	labels, values := analyzer.ChartSeries(ranking)
	return chart.WriteBarChart(w, analyzer.TypesChartTitle(topN), labels, values, chart.Options{DPI: dpi})
}
