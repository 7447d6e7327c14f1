package datastructure

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const UNKNOWN_BUILDING_TYPE = "unknown"

// Building. one building footprint with its energy estimate. Created once by the extractor and only read afterwards.
type Building struct {
	id       int64
	tipe     string
	name     string
	levels   int
	energy   float64
	geometry orb.Polygon
}

func NewBuilding(id int64, tipe, name string, levels int, energy float64, geometry orb.Polygon) Building {
	return Building{
		id:       id,
		tipe:     tipe,
		name:     name,
		levels:   levels,
		energy:   energy,
		geometry: geometry,
	}
}

func (b Building) GetID() int64 {
	return b.id
}

func (b Building) GetType() string {
	return b.tipe
}

func (b Building) GetName() string {
	return b.name
}

func (b Building) GetLevels() int {
	return b.levels
}

func (b Building) GetEnergy() float64 {
	return b.energy
}

// GetGeometry. callers must not modify the returned polygon, clone it first.
func (b Building) GetGeometry() orb.Polygon {
	return b.geometry
}

// Centroid. area-weighted planar centroid in lon/lat degrees.
func (b Building) Centroid() orb.Point {
	c, _ := planar.CentroidArea(b.geometry)
	return c
}

// NormalizeBuildingType. lower-cased type label, empty means unknown.
func NormalizeBuildingType(tipe string) string {
	t := strings.ToLower(strings.TrimSpace(tipe))
	if t == "" {
		return UNKNOWN_BUILDING_TYPE
	}
	return t
}
