package energy

import (
	"strconv"

	"github.com/lintang-b-s/BuildingEnergy/pkg/util"
)

const DEFAULT_LEVELS = 1

// ParseLevels. building:levels tag to a level count. Only plain decimal digits are accepted, anything else
// (empty, "2.5", "-1", "3;4", overflowing values) counts as a single level.
func ParseLevels(raw string) int {
	if !util.IsDigits(raw) {
		return DEFAULT_LEVELS
	}
	levels, err := strconv.Atoi(raw)
	if err != nil {
		return DEFAULT_LEVELS
	}
	return levels
}

type Estimator struct {
	table     RateTable
	maxLevels int
}

// NewEstimator. maxLevels <= 0 leaves level counts unbounded.
func NewEstimator(table RateTable, maxLevels int) *Estimator {
	return &Estimator{
		table:     table,
		maxLevels: maxLevels,
	}
}

// Levels. effective level count used in the energy formula.
func (e *Estimator) Levels(rawLevels string) int {
	levels := ParseLevels(rawLevels)
	if e.maxLevels > 0 && levels > e.maxLevels {
		return e.maxLevels
	}
	return levels
}

// Estimate. energy = base_rate(type) * levels.
func (e *Estimator) Estimate(buildingType string, levels int) float64 {
	return e.table.Rate(buildingType) * float64(levels)
}
