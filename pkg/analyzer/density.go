package analyzer

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lintang-b-s/BuildingEnergy/pkg/concurrent"
	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/geo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const DEFAULT_PERCENTILE = 0.95

var (
	ErrEmptySeries       = errors.New("empty series")
	ErrInvalidPercentile = errors.New("percentile must be in (0, 1]")
)

// DensityResult. per-building areas in input order plus the energy densities of buildings with positive area.
type DensityResult struct {
	Areas     []float64
	Densities []float64
	// DensityIndex[i] is the building index Densities[i] was computed from.
	DensityIndex []int
	Excluded     int
}

// ComputeAreas. footprint area of every building, fanned out over workers. Geometries are not modified.
func ComputeAreas(buildings []datastructure.Building, method geo.AreaMethod, workers int) []float64 {
	return concurrent.Map(buildings, workers, func(b datastructure.Building) float64 {
		return geo.Area(b.GetGeometry(), method)
	})
}

// ComputeDensities. energy / area for every building with area > 0, the rest are counted as excluded.
func ComputeDensities(buildings []datastructure.Building, method geo.AreaMethod, workers int) DensityResult {
	areas := ComputeAreas(buildings, method, workers)
	res := DensityResult{
		Areas:        areas,
		Densities:    make([]float64, 0, len(buildings)),
		DensityIndex: make([]int, 0, len(buildings)),
	}
	for i, b := range buildings {
		a := areas[i]
		if !(a > 0) || math.IsInf(a, 0) {
			res.Excluded++
			continue
		}
		res.Densities = append(res.Densities, b.GetEnergy()/a)
		res.DensityIndex = append(res.DensityIndex, i)
	}
	return res
}

// Log10Series. log10 of the strictly positive values, order preserved.
func Log10Series(series []float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if v > 0 {
			out = append(out, math.Log10(v))
		}
	}
	return out
}

// PercentileValue. linear interpolation between the closest ranks at (n-1)*p, the same definition numpy and
// pandas default to.
func PercentileValue(series []float64, p float64) (float64, error) {
	if len(series) == 0 {
		return 0, ErrEmptySeries
	}
	if !(p > 0 && p <= 1) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidPercentile, p)
	}
	sorted := sortedCopy(series)
	rank := float64(len(sorted)-1) * p
	lo := int(math.Floor(rank))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1], nil
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[lo+1]-sorted[lo]), nil
}

// SplitAtPercentile. partitions series into values <= q and values > q where q is the p-th percentile.
// Both parts keep the input order.
func SplitAtPercentile(series []float64, p float64) (below, above []float64, q float64, err error) {
	q, err = PercentileValue(series, p)
	if err != nil {
		return nil, nil, 0, err
	}
	below = make([]float64, 0, len(series))
	above = make([]float64, 0)
	for _, v := range series {
		if v <= q {
			below = append(below, v)
		} else {
			above = append(above, v)
		}
	}
	return below, above, q, nil
}

type Summary struct {
	Count           int     `json:"count"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	Median          float64 `json:"median"`
	Mean            float64 `json:"mean"`
	StdDev          float64 `json:"std_dev"`
	Percentile      float64 `json:"percentile"`
	PercentileValue float64 `json:"percentile_value"`
	FractionAbove   float64 `json:"fraction_above"`
}

// Summarize. descriptive statistics of series. StdDev is the sample standard deviation, 0 for a single value.
func Summarize(series []float64, p float64) (Summary, error) {
	if len(series) == 0 {
		return Summary{}, ErrEmptySeries
	}
	_, above, q, err := SplitAtPercentile(series, p)
	if err != nil {
		return Summary{}, err
	}

	sorted := sortedCopy(series)
	n := len(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	if n == 1 {
		std = 0
	}

	return Summary{
		Count:           n,
		Min:             floats.Min(sorted),
		Max:             floats.Max(sorted),
		Median:          median(sorted),
		Mean:            mean,
		StdDev:          std,
		Percentile:      p,
		PercentileValue: q,
		FractionAbove:   float64(len(above)) / float64(n),
	}, nil
}

// median of a sorted, non-empty slice. Even lengths average the two middle values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func sortedCopy(series []float64) []float64 {
	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)
	return sorted
}
