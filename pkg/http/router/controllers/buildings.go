package controllers

import (
	"bytes"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/BuildingEnergy/pkg/analyzer"
	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/featurestore"
	helper "github.com/lintang-b-s/BuildingEnergy/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/BuildingEnergy/pkg/util"
	"go.uber.org/zap"
)

const (
	DEFAULT_TOP_N     = 8
	DEFAULT_CHART_DPI = 100
)

type buildingAPI struct {
	buildingService BuildingService
	log             *zap.Logger
}

func New(buildingService BuildingService, log *zap.Logger) *buildingAPI {
	return &buildingAPI{
		buildingService: buildingService,
		log:             log,
	}
}

func (api *buildingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/buildings", api.buildings)
	group.GET("/stats/types", api.typeRanking)
	group.GET("/stats/density", api.densitySummary)
	group.GET("/heatmap", api.heatmap)
	group.GET("/charts/types", api.typesChart)
}

func (api *buildingAPI) buildings(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request buildingsRequest
		err     error
	)

	if request.MinLon, err = queryFloat(r, "min_lon", 0, true); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.MinLat, err = queryFloat(r, "min_lat", 0, true); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.MaxLon, err = queryFloat(r, "max_lon", 0, true); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.MaxLat, err = queryFloat(r, "max_lat", 0, true); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.Limit, err = queryInt(r, "limit", 0); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	request.Encoding = r.URL.Query().Get("encoding")
	if request.Encoding == "" {
		request.Encoding = ENCODING_GEOJSON
	}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	bbox, err := datastructure.NewBoundingBox(request.MinLon, request.MinLat, request.MaxLon, request.MaxLat)
	if err != nil {
		api.getStatusCode(w, r, util.WrapErrorf(err, util.ErrBadParamInput, "invalid bounding box"))
		return
	}

	buildings := api.buildingService.BuildingsInBoundingBox(bbox, request.Limit)

	if request.Encoding == ENCODING_POLYLINE {
		if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewBuildingsResponse(buildings)}, nil); err != nil {
			api.ServerErrorResponse(w, r, err)
		}
		return
	}

	body, err := featurestore.ToFeatureCollection(buildings).MarshalJSON()
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if err := api.writeBody(w, http.StatusOK, "application/geo+json", body, nil); err != nil {
		api.logError(r, err)
	}
}

func (api *buildingAPI) typeRanking(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request typesRequest
		err     error
	)
	if request.TopN, err = queryInt(r, "top_n", DEFAULT_TOP_N); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	request.DPI = DEFAULT_CHART_DPI
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	ranking, err := api.buildingService.TypeRanking(request.TopN)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTypesResponse(request.TopN, ranking)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *buildingAPI) densitySummary(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request densityRequest
		err     error
	)
	if request.Percentile, err = queryFloat(r, "percentile", analyzer.DEFAULT_PERCENTILE, false); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	summary, excluded, err := api.buildingService.DensitySummary(request.Percentile)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewDensityResponse(summary, excluded)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *buildingAPI) heatmap(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request heatmapRequest
		err     error
	)
	if request.CellSize, err = queryFloat(r, "cell_size", analyzer.DEFAULT_CELL_SIZE, false); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	fc, err := api.buildingService.Heatmap(request.CellSize)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	body, err := fc.MarshalJSON()
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if err := api.writeBody(w, http.StatusOK, "application/geo+json", body, nil); err != nil {
		api.logError(r, err)
	}
}

func (api *buildingAPI) typesChart(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request typesRequest
		err     error
	)
	if request.TopN, err = queryInt(r, "top_n", DEFAULT_TOP_N); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.DPI, err = queryInt(r, "dpi", DEFAULT_CHART_DPI); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := api.buildingService.WriteTypesChart(&buf, request.TopN, request.DPI); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeBody(w, http.StatusOK, "image/png", buf.Bytes(), nil); err != nil {
		api.logError(r, err)
	}
}
