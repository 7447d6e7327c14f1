package geo

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var (
	ErrTooFewVertices    = errors.New("polygon needs at least 3 distinct vertices")
	ErrInvalidCoordinate = errors.New("coordinate is not a finite WGS84 lon/lat")
	ErrDegeneratePolygon = errors.New("polygon has zero area")
)

func validCoordinate(p orb.Point) bool {
	lon, lat := p.Lon(), p.Lat()
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// NewPolygon. builds a closed single-ring polygon from way vertices (lon, lat).
// Consecutive duplicates are dropped and the ring is closed if the way was left open.
func NewPolygon(points []orb.Point) (orb.Polygon, error) {
	for _, p := range points {
		if !validCoordinate(p) {
			return nil, ErrInvalidCoordinate
		}
	}

	distinct := make(map[orb.Point]struct{}, len(points))
	for _, p := range points {
		distinct[p] = struct{}{}
	}
	if len(distinct) < 3 {
		return nil, ErrTooFewVertices
	}

	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		if len(ring) > 0 && ring[len(ring)-1] == p {
			continue
		}
		ring = append(ring, p)
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}

	if RingArea(ring) == 0 {
		return nil, ErrDegeneratePolygon
	}

	return orb.Polygon{ring}, nil
}

// RingArea. unsigned planar area in the units of the ring coordinates.
func RingArea(r orb.Ring) float64 {
	return math.Abs(planar.Area(r))
}
