package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
)

type AreaMethod string

const (
	// AREA_MERCATOR. planar area after projecting to Web Mercator (EPSG:3857), in projected m².
	AREA_MERCATOR AreaMethod = "mercator"
	// AREA_GEODESIC. area of the polygon on the sphere, in m².
	AREA_GEODESIC AreaMethod = "geodesic"
)

const (
	earthRadiusM = 6371008.8
)

func ParseAreaMethod(s string) (AreaMethod, error) {
	switch AreaMethod(s) {
	case AREA_MERCATOR, AREA_GEODESIC:
		return AreaMethod(s), nil
	default:
		return "", fmt.Errorf("unknown area method %q, expected %q or %q", s, AREA_MERCATOR, AREA_GEODESIC)
	}
}

// Area. footprint area of a lon/lat polygon using the given method. The polygon is not modified.
func Area(p orb.Polygon, method AreaMethod) float64 {
	if method == AREA_GEODESIC {
		return GeodesicArea(p)
	}
	return MercatorArea(p)
}

// MercatorArea. the polygon is projected on a clone, so geographic coordinates stay available to the caller.
func MercatorArea(p orb.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	projected := project.Polygon(p.Clone(), project.WGS84.ToMercator)
	return math.Abs(planar.Area(projected))
}

// GeodesicArea. outer ring minus holes, each ring measured as an s2 loop.
func GeodesicArea(p orb.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	area := ringGeodesicArea(p[0])
	for _, hole := range p[1:] {
		area -= ringGeodesicArea(hole)
	}
	return math.Max(area, 0)
}

func ringGeodesicArea(r orb.Ring) float64 {
	n := len(r)
	if n > 0 && r.Closed() {
		n--
	}
	if n < 3 {
		return 0
	}

	pts := make([]s2.Point, 0, n)
	for _, p := range r[:n] {
		pts = append(pts, s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat(), p.Lon())))
	}
	loop := s2.LoopFromPoints(pts)
	// osm rings come in both orientations, normalize so the loop encloses the smaller side.
	loop.Normalize()
	return loop.Area() * earthRadiusM * earthRadiusM
}
