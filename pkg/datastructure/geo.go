package datastructure

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

var ErrInvalidBoundingBox = errors.New("invalid bounding box")

// BoundingBox. geographic rectangle in WGS84 degrees used as a containment filter.
type BoundingBox struct {
	minLon, minLat float64
	maxLon, maxLat float64
}

// NewBoundingBox. argument order follows the usual (min lon, min lat, max lon, max lat) bbox convention.
func NewBoundingBox(minLon, minLat, maxLon, maxLat float64) (BoundingBox, error) {
	for _, v := range []float64{minLon, minLat, maxLon, maxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return BoundingBox{}, fmt.Errorf("%w: non-finite coordinate", ErrInvalidBoundingBox)
		}
	}
	if minLon < -180 || maxLon > 180 || minLat < -90 || maxLat > 90 {
		return BoundingBox{}, fmt.Errorf("%w: (%v, %v, %v, %v) out of WGS84 range", ErrInvalidBoundingBox,
			minLon, minLat, maxLon, maxLat)
	}
	if minLon >= maxLon || minLat >= maxLat {
		return BoundingBox{}, fmt.Errorf("%w: min must be lower than max, got (%v, %v, %v, %v)", ErrInvalidBoundingBox,
			minLon, minLat, maxLon, maxLat)
	}
	return BoundingBox{
		minLon: minLon,
		minLat: minLat,
		maxLon: maxLon,
		maxLat: maxLat,
	}, nil
}

func (b BoundingBox) GetMinLon() float64 {
	return b.minLon
}

func (b BoundingBox) GetMinLat() float64 {
	return b.minLat
}

func (b BoundingBox) GetMaxLon() float64 {
	return b.maxLon
}

func (b BoundingBox) GetMaxLat() float64 {
	return b.maxLat
}

// ContainsStrict. true only for points in the interior, points on the edges are outside.
func (b BoundingBox) ContainsStrict(p orb.Point) bool {
	return p.Lon() > b.minLon && p.Lon() < b.maxLon &&
		p.Lat() > b.minLat && p.Lat() < b.maxLat
}

func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.minLon, b.minLat},
		Max: orb.Point{b.maxLon, b.maxLat},
	}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%v, %v, %v, %v)", b.minLon, b.minLat, b.maxLon, b.maxLat)
}
