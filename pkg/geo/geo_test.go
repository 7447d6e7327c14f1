package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolygon(t *testing.T) {
	testCases := []struct {
		name     string
		points   []orb.Point
		wantErr  error
		wantRing int
	}{
		{
			name:     "closed square",
			points:   []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
			wantRing: 5,
		},
		{
			name:     "open triangle gets closed",
			points:   []orb.Point{{0, 0}, {1, 0}, {1, 1}},
			wantRing: 4,
		},
		{
			name:     "consecutive duplicates dropped",
			points:   []orb.Point{{0, 0}, {0, 0}, {1, 0}, {1, 1}, {1, 1}, {0, 0}},
			wantRing: 4,
		},
		{
			name:    "closed way with two distinct vertices",
			points:  []orb.Point{{0, 0}, {1, 0}, {0, 0}},
			wantErr: ErrTooFewVertices,
		},
		{
			name:    "all points identical",
			points:  []orb.Point{{5, 5}, {5, 5}, {5, 5}, {5, 5}},
			wantErr: ErrTooFewVertices,
		},
		{
			name:    "collinear",
			points:  []orb.Point{{0, 0}, {1, 1}, {2, 2}, {0, 0}},
			wantErr: ErrDegeneratePolygon,
		},
		{
			name:    "nan coordinate",
			points:  []orb.Point{{0, 0}, {math.NaN(), 1}, {1, 1}},
			wantErr: ErrInvalidCoordinate,
		},
		{
			name:    "latitude out of range",
			points:  []orb.Point{{0, 0}, {1, 91}, {1, 1}},
			wantErr: ErrInvalidCoordinate,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			poly, err := NewPolygon(tt.points)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, poly, 1)
			assert.Len(t, poly[0], tt.wantRing)
			assert.True(t, poly[0].Closed())
		})
	}
}

func square(lon, lat, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{lon, lat}, {lon + size, lat}, {lon + size, lat + size}, {lon, lat + size}, {lon, lat},
	}}
}

func TestAreaAtEquator(t *testing.T) {
	poly := square(0, 0, 0.001)

	// 0.001 degree is ~111.2 m on the sphere, ~111.3 m on the mercator x axis
	geodesic := GeodesicArea(poly)
	assert.InEpsilon(t, 12364.0, geodesic, 0.01)

	mercator := MercatorArea(poly)
	assert.InEpsilon(t, 12392.0, mercator, 0.01)
}

func TestMercatorInflatesAtHighLatitude(t *testing.T) {
	poly := square(48.3, 54.3, 0.001)

	geodesic := Area(poly, AREA_GEODESIC)
	mercator := Area(poly, AREA_MERCATOR)

	ratio := mercator / geodesic
	scale := 1 / math.Pow(math.Cos(54.3005*math.Pi/180), 2)
	assert.InEpsilon(t, scale, ratio, 0.02)
}

func TestAreaDoesNotMutateInput(t *testing.T) {
	poly := square(48.3, 54.3, 0.001)
	before := poly.Clone()

	_ = MercatorArea(poly)
	_ = GeodesicArea(poly)

	assert.Equal(t, before, poly)
}

func TestGeodesicAreaOrientationIndependent(t *testing.T) {
	poly := square(10, 10, 0.01)
	reversed := poly.Clone()
	reversed[0].Reverse()

	assert.InEpsilon(t, GeodesicArea(poly), GeodesicArea(reversed), 1e-9)
}

func TestGeodesicAreaSubtractsHoles(t *testing.T) {
	outer := square(0, 0, 0.002)
	hole := square(0.0005, 0.0005, 0.001)
	poly := orb.Polygon{outer[0], hole[0]}

	assert.InEpsilon(t, GeodesicArea(outer)-GeodesicArea(hole), GeodesicArea(poly), 1e-6)
}

func TestParseAreaMethod(t *testing.T) {
	m, err := ParseAreaMethod("geodesic")
	require.NoError(t, err)
	assert.Equal(t, AREA_GEODESIC, m)

	_, err = ParseAreaMethod("albers")
	assert.Error(t, err)
}

func TestPolylineFromRing(t *testing.T) {
	ring := orb.Ring{{-120.2, 38.5}, {-120.95, 40.7}, {-126.453, 43.252}}
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", PolylineFromRing(ring))
}
