package controllers

import (
	"github.com/lintang-b-s/BuildingEnergy/pkg/analyzer"
	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/geo"
)

const (
	ENCODING_GEOJSON  = "geojson"
	ENCODING_POLYLINE = "polyline"
)

type buildingsRequest struct {
	MinLon   float64 `json:"min_lon" validate:"min=-180,max=180"`
	MinLat   float64 `json:"min_lat" validate:"min=-90,max=90"`
	MaxLon   float64 `json:"max_lon" validate:"min=-180,max=180,gtfield=MinLon"`
	MaxLat   float64 `json:"max_lat" validate:"min=-90,max=90,gtfield=MinLat"`
	Limit    int     `json:"limit" validate:"min=0,max=5000"`
	Encoding string  `json:"encoding" validate:"oneof=geojson polyline"`
}

type typesRequest struct {
	TopN int `json:"top_n" validate:"min=1,max=100"`
	DPI  int `json:"dpi" validate:"min=1,max=600"`
}

type densityRequest struct {
	Percentile float64 `json:"percentile" validate:"gt=0,lte=1"`
}

type heatmapRequest struct {
	CellSize float64 `json:"cell_size" validate:"gt=0,lte=10"`
}

type buildingResponse struct {
	ID      int64   `json:"id"`
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	Levels  int     `json:"levels"`
	Energy  float64 `json:"energy"`
	Outline string  `json:"outline"`
}

func NewBuildingResponse(b datastructure.Building) buildingResponse {
	outline := ""
	if g := b.GetGeometry(); len(g) > 0 {
		outline = geo.PolylineFromRing(g[0])
	}
	return buildingResponse{
		ID:      b.GetID(),
		Type:    b.GetType(),
		Name:    b.GetName(),
		Levels:  b.GetLevels(),
		Energy:  b.GetEnergy(),
		Outline: outline,
	}
}

func NewBuildingsResponse(buildings []datastructure.Building) []buildingResponse {
	out := make([]buildingResponse, 0, len(buildings))
	for _, b := range buildings {
		out = append(out, NewBuildingResponse(b))
	}
	return out
}

type typesResponse struct {
	TopN    int                  `json:"top_n"`
	Total   int                  `json:"total"`
	Ranking []analyzer.TypeCount `json:"ranking"`
}

func NewTypesResponse(topN int, ranking []analyzer.TypeCount) typesResponse {
	return typesResponse{
		TopN:    topN,
		Total:   analyzer.TotalCount(ranking),
		Ranking: ranking,
	}
}

type densityResponse struct {
	analyzer.Summary
	Excluded int `json:"excluded"`
}

func NewDensityResponse(summary analyzer.Summary, excluded int) densityResponse {
	return densityResponse{
		Summary:  summary,
		Excluded: excluded,
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
