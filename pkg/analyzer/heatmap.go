package analyzer

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/spatialindex"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	DEFAULT_CELL_SIZE = 0.01
	maxHeatmapCells   = 1_000_000
)

var ErrInvalidCellSize = errors.New("invalid heatmap cell size")

type CellSearcher interface {
	SearchCell(bound orb.Bound, lastCol, lastRow bool, fn func(e spatialindex.BuildingEntry))
}

// HeatCell. energy and area totals of the buildings whose centroid falls in one grid cell.
type HeatCell struct {
	Bound  orb.Bound
	Row    int
	Col    int
	Count  int
	Energy float64
	Area   float64
}

// Density. energy per unit area of the cell, 0 when the cell has no measurable area.
func (c HeatCell) Density() float64 {
	if c.Area <= 0 {
		return 0
	}
	return c.Energy / c.Area
}

// BuildHeatmap. square grid of cellSize degrees anchored at the south-west corner of the centroid bounds.
// areas[i] belongs to buildings[i], index must be built over the same slice. Empty cells are omitted,
// cells come back row by row from the south.
func BuildHeatmap(buildings []datastructure.Building, areas []float64, cellSize float64,
	index CellSearcher) ([]HeatCell, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCellSize, cellSize)
	}
	if len(areas) != len(buildings) {
		return nil, fmt.Errorf("got %d areas for %d buildings", len(areas), len(buildings))
	}
	if len(buildings) == 0 {
		return []HeatCell{}, nil
	}

	bound := centroidBound(buildings)
	colsF := math.Floor((bound.Max.Lon()-bound.Min.Lon())/cellSize) + 1
	rowsF := math.Floor((bound.Max.Lat()-bound.Min.Lat())/cellSize) + 1
	if colsF*rowsF > maxHeatmapCells {
		return nil, fmt.Errorf("%w: %v degrees gives %.0f x %.0f cells", ErrInvalidCellSize, cellSize, colsF, rowsF)
	}
	cols, rows := int(colsF), int(rowsF)

	cells := make([]HeatCell, 0)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := HeatCell{
				Row: r,
				Col: c,
				Bound: orb.Bound{
					Min: orb.Point{bound.Min.Lon() + float64(c)*cellSize, bound.Min.Lat() + float64(r)*cellSize},
					Max: orb.Point{bound.Min.Lon() + float64(c+1)*cellSize, bound.Min.Lat() + float64(r+1)*cellSize},
				},
			}
			index.SearchCell(cell.Bound, c == cols-1, r == rows-1, func(e spatialindex.BuildingEntry) {
				cell.Count++
				cell.Energy += buildings[e.GetIndex()].GetEnergy()
				cell.Area += areas[e.GetIndex()]
			})
			if cell.Count > 0 {
				cells = append(cells, cell)
			}
		}
	}
	return cells, nil
}

// HeatmapFeatureCollection. one polygon feature per cell with count, energy, area and density properties.
func HeatmapFeatureCollection(cells []HeatCell) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, cell := range cells {
		f := geojson.NewFeature(cell.Bound.ToPolygon())
		f.Properties["row"] = cell.Row
		f.Properties["col"] = cell.Col
		f.Properties["count"] = cell.Count
		f.Properties["energy"] = cell.Energy
		f.Properties["area"] = cell.Area
		f.Properties["density"] = cell.Density()
		fc.Append(f)
	}
	return fc
}

func centroidBound(buildings []datastructure.Building) orb.Bound {
	first := buildings[0].Centroid()
	bound := orb.Bound{Min: first, Max: first}
	for _, b := range buildings[1:] {
		bound = bound.Extend(b.Centroid())
	}
	return bound
}
