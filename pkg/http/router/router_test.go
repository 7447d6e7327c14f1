package router

import (
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lintang-b-s/BuildingEnergy/pkg/analyzer"
	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/geo"
	"github.com/lintang-b-s/BuildingEnergy/pkg/http/router/controllers"
	"github.com/lintang-b-s/BuildingEnergy/pkg/http/usecases"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func square(id int64, tipe string, lon, lat, energy float64) datastructure.Building {
	d := 0.0005
	return datastructure.NewBuilding(id, tipe, "", 1, energy, orb.Polygon{orb.Ring{
		{lon - d, lat - d}, {lon + d, lat - d}, {lon + d, lat + d}, {lon - d, lat + d}, {lon - d, lat - d},
	}})
}

func testBuildings() []datastructure.Building {
	return []datastructure.Building{
		square(1, "residential", 48.30, 54.30, 50000),
		square(2, "residential", 48.31, 54.31, 100000),
		square(3, "commercial", 48.32, 54.32, 150000),
		square(4, "school", 48.45, 54.38, 200000),
		square(5, "industrial", 49.00, 55.00, 300000),
	}
}

func newTestHandler(t *testing.T, opts Options) http.Handler {
	t.Helper()
	log := zap.NewNop()
	svc := usecases.NewBuildingService(log, testBuildings(), geo.AREA_MERCATOR, 2)
	return NewAPI(log).Handler(opts, svc)
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestHeartbeat(t *testing.T) {
	rec := get(t, newTestHandler(t, Options{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ".", rec.Body.String())
}

func TestBuildingsGeoJSON(t *testing.T) {
	rec := get(t, newTestHandler(t, Options{}), "/api/buildings?min_lon=48.2&min_lat=54.25&max_lon=48.5&max_lat=54.4")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 4)
	assert.Equal(t, 1.0, fc.Features[0].Properties["id"])
	assert.Equal(t, "school", fc.Features[3].Properties["type"])
}

func TestBuildingsPolylineWithLimit(t *testing.T) {
	rec := get(t, newTestHandler(t, Options{}),
		"/api/buildings?min_lon=48.2&min_lat=54.25&max_lon=48.5&max_lat=54.4&limit=2&encoding=polyline")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data []struct {
			ID      int64   `json:"id"`
			Energy  float64 `json:"energy"`
			Outline string  `json:"outline"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, int64(1), body.Data[0].ID)
	assert.Equal(t, int64(2), body.Data[1].ID)
	assert.NotEmpty(t, body.Data[0].Outline)
}

func TestBuildingsBadRequest(t *testing.T) {
	h := newTestHandler(t, Options{})
	testCases := []struct {
		name string
		url  string
	}{
		{name: "missing max_lat", url: "/api/buildings?min_lon=48.2&min_lat=54.25&max_lon=48.5"},
		{name: "not a number", url: "/api/buildings?min_lon=abc&min_lat=54.25&max_lon=48.5&max_lat=54.4"},
		{name: "inverted", url: "/api/buildings?min_lon=48.5&min_lat=54.25&max_lon=48.2&max_lat=54.4"},
		{name: "latitude out of range", url: "/api/buildings?min_lon=48.2&min_lat=-95&max_lon=48.5&max_lat=54.4"},
		{name: "unknown encoding", url: "/api/buildings?min_lon=48.2&min_lat=54.25&max_lon=48.5&max_lat=54.4&encoding=wkt"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.url)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorResponseBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "bad_request", body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

type errorResponseBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestTypeRanking(t *testing.T) {
	h := newTestHandler(t, Options{})

	rec := get(t, h, "/api/stats/types?top_n=1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Data struct {
			TopN    int                  `json:"top_n"`
			Total   int                  `json:"total"`
			Ranking []analyzer.TypeCount `json:"ranking"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Data.Total)
	assert.Equal(t, []analyzer.TypeCount{{Type: "other", Count: 3}, {Type: "residential", Count: 2}}, body.Data.Ranking)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/stats/types?top_n=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/stats/types?top_n=x").Code)
}

func TestDensitySummary(t *testing.T) {
	h := newTestHandler(t, Options{})

	rec := get(t, h, "/api/stats/density")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Data struct {
			Count      int     `json:"count"`
			Percentile float64 `json:"percentile"`
			Excluded   int     `json:"excluded"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Data.Count)
	assert.Equal(t, 0.95, body.Data.Percentile)
	assert.Equal(t, 0, body.Data.Excluded)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/stats/density?percentile=2").Code)
}

func TestDensitySummaryEmptyCollection(t *testing.T) {
	log := zap.NewNop()
	h := NewAPI(log).Handler(Options{}, usecases.NewBuildingService(log, nil, geo.AREA_MERCATOR, 1))

	rec := get(t, h, "/api/stats/density")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHeatmap(t *testing.T) {
	h := newTestHandler(t, Options{})

	rec := get(t, h, "/api/heatmap?cell_size=0.5")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)

	total := 0.0
	for _, f := range fc.Features {
		total += f.Properties["count"].(float64)
	}
	assert.Equal(t, 5.0, total)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/heatmap?cell_size=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/heatmap?cell_size=0.000001").Code)
}

func TestTypesChart(t *testing.T) {
	rec := get(t, newTestHandler(t, Options{}), "/api/charts/types?top_n=3&dpi=20")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	_, err := png.DecodeConfig(rec.Body)
	assert.NoError(t, err)
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t, Options{UseRateLimit: true, RateLimit: 0.001, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, get(t, h, "/api/stats/types").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, h, "/api/stats/types").Code)
}

type panickingService struct {
	controllers.BuildingService
}

func (panickingService) TypeRanking(int) ([]analyzer.TypeCount, error) {
	panic("boom")
}

func TestRecoverPanic(t *testing.T) {
	log := zap.NewNop()
	h := NewAPI(log).Handler(Options{}, panickingService{})

	rec := get(t, h, "/api/stats/types")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "internal_server_error")
}
