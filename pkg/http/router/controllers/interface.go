package controllers

import (
	"io"

	"github.com/lintang-b-s/BuildingEnergy/pkg/analyzer"
	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/paulmach/orb/geojson"
)

type BuildingService interface {
	BuildingsInBoundingBox(bbox datastructure.BoundingBox, limit int) []datastructure.Building
	TypeRanking(topN int) ([]analyzer.TypeCount, error)
	DensitySummary(percentile float64) (analyzer.Summary, int, error)
	Heatmap(cellSize float64) (*geojson.FeatureCollection, error)
	WriteTypesChart(w io.Writer, topN, dpi int) error
}
