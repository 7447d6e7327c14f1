package osmparser

import (
	"github.com/paulmach/orb"
)

type SkipReason string

const (
	SKIP_NOT_BUILDING       SkipReason = "not_building"
	SKIP_TOO_FEW_VERTICES   SkipReason = "too_few_vertices"
	SKIP_MISSING_NODE       SkipReason = "missing_node"
	SKIP_INVALID_COORDINATE SkipReason = "invalid_coordinate"
	SKIP_DEGENERATE_POLYGON SkipReason = "degenerate_polygon"
	SKIP_OUTSIDE_BBOX       SkipReason = "outside_bbox"
)

// Silent. expected skips that are counted but never logged.
func (r SkipReason) Silent() bool {
	switch r {
	case SKIP_NOT_BUILDING, SKIP_TOO_FEW_VERTICES, SKIP_OUTSIDE_BBOX:
		return true
	default:
		return false
	}
}

// ElementResult. why a building-tagged way was dropped.
type ElementResult struct {
	wayID  int64
	reason SkipReason
	err    error
}

func NewElementResult(wayID int64, reason SkipReason, err error) ElementResult {
	return ElementResult{
		wayID:  wayID,
		reason: reason,
		err:    err,
	}
}

func (e ElementResult) GetWayID() int64 {
	return e.wayID
}

func (e ElementResult) GetReason() SkipReason {
	return e.reason
}

func (e ElementResult) GetErr() error {
	return e.err
}

// BuildingWay. building-tagged way resolved to a valid polygon, not yet filtered nor estimated.
type BuildingWay struct {
	id        int64
	tipe      string
	name      string
	rawLevels string
	polygon   orb.Polygon
}

func NewBuildingWay(id int64, tipe, name, rawLevels string, polygon orb.Polygon) BuildingWay {
	return BuildingWay{
		id:        id,
		tipe:      tipe,
		name:      name,
		rawLevels: rawLevels,
		polygon:   polygon,
	}
}

func (b BuildingWay) GetID() int64 {
	return b.id
}

func (b BuildingWay) GetType() string {
	return b.tipe
}

func (b BuildingWay) GetName() string {
	return b.name
}

func (b BuildingWay) GetRawLevels() string {
	return b.rawLevels
}

func (b BuildingWay) GetPolygon() orb.Polygon {
	return b.polygon
}

type ParseResult struct {
	Buildings   []BuildingWay
	Skipped     []ElementResult
	SkipCounts  map[SkipReason]int
	ScannedWays int
}
