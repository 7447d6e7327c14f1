package usecases

import (
	"github.com/lintang-b-s/BuildingEnergy/pkg/spatialindex"
	"github.com/paulmach/orb"
)

type SpatialIndex interface {
	SearchStrict(bound orb.Bound, limit int) []spatialindex.BuildingEntry
	SearchCell(bound orb.Bound, lastCol, lastRow bool, fn func(e spatialindex.BuildingEntry))
}
