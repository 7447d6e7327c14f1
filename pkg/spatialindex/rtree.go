package spatialindex

import (
	"sort"

	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

type Rtree struct {
	tr *rtree.RTreeG[BuildingEntry]
}

// BuildingEntry. leaf payload, index into the building slice the tree was built from plus its centroid.
type BuildingEntry struct {
	index    int
	centroid orb.Point
}

func (be BuildingEntry) GetIndex() int {
	return be.index
}

func (be BuildingEntry) GetCentroid() orb.Point {
	return be.centroid
}

func newBuildingEntry(index int, centroid orb.Point) BuildingEntry {
	return BuildingEntry{
		index:    index,
		centroid: centroid,
	}
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[BuildingEntry]
	return &Rtree{
		tr: &tr,
	}
}

// Build. one point leaf per building centroid.
func (rt *Rtree) Build(buildings []datastructure.Building, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("buildings", len(buildings)))
	for i, b := range buildings {
		c := b.Centroid()
		p := [2]float64{c.Lon(), c.Lat()}
		rt.tr.Insert(p, p, newBuildingEntry(i, c))
	}
	log.Info("R-tree spatial index built.")
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// SearchStrict. entries whose centroid is strictly inside bound, at most limit of them (limit <= 0 means all).
// Results come back in building order.
func (rt *Rtree) SearchStrict(bound orb.Bound, limit int) []BuildingEntry {
	results := make([]BuildingEntry, 0, 16)
	rt.tr.Search([2]float64{bound.Min.Lon(), bound.Min.Lat()}, [2]float64{bound.Max.Lon(), bound.Max.Lat()},
		func(min, max [2]float64, data BuildingEntry) bool {
			c := data.centroid
			if c.Lon() <= bound.Min.Lon() || c.Lon() >= bound.Max.Lon() ||
				c.Lat() <= bound.Min.Lat() || c.Lat() >= bound.Max.Lat() {
				return true
			}
			results = append(results, data)
			return true
		})

	sortEntries(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// SearchCell. entries with min <= centroid < max on both axes, so adjacent grid cells never share a building.
// The last column and row of a grid also take centroids on their max edge.
func (rt *Rtree) SearchCell(bound orb.Bound, lastCol, lastRow bool, fn func(e BuildingEntry)) {
	rt.tr.Search([2]float64{bound.Min.Lon(), bound.Min.Lat()}, [2]float64{bound.Max.Lon(), bound.Max.Lat()},
		func(min, max [2]float64, data BuildingEntry) bool {
			c := data.centroid
			if c.Lon() < bound.Min.Lon() || c.Lat() < bound.Min.Lat() {
				return true
			}
			if c.Lon() >= bound.Max.Lon() && !lastCol {
				return true
			}
			if c.Lat() >= bound.Max.Lat() && !lastRow {
				return true
			}
			fn(data)
			return true
		})
}

func sortEntries(entries []BuildingEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].index < entries[j].index
	})
}
