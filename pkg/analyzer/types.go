package analyzer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
)

const OTHER_TYPE = "other"

var ErrInvalidTopN = errors.New("top_n must be at least 1")

type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// CountTypes. occurrences per normalized building type.
func CountTypes(buildings []datastructure.Building) map[string]int {
	counts := make(map[string]int)
	for _, b := range buildings {
		counts[datastructure.NormalizeBuildingType(b.GetType())]++
	}
	return counts
}

// RankTypes. top-n types by count (ties alphabetical), everything else merged into the other bucket, which is
// ranked by its count like any named type. A category literally named other never takes a top slot, it is
// always folded into the bucket.
func RankTypes(counts map[string]int, topN int) ([]TypeCount, error) {
	if topN < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopN, topN)
	}

	ranked := make([]TypeCount, 0, len(counts))
	otherCount := 0
	for tipe, c := range counts {
		if tipe == OTHER_TYPE {
			otherCount += c
			continue
		}
		ranked = append(ranked, TypeCount{Type: tipe, Count: c})
	}
	sortRanking(ranked)

	if len(ranked) > topN {
		for _, tc := range ranked[topN:] {
			otherCount += tc.Count
		}
		ranked = ranked[:topN]
	}
	if otherCount > 0 {
		ranked = append(ranked, TypeCount{Type: OTHER_TYPE, Count: otherCount})
		sortRanking(ranked)
	}
	return ranked, nil
}

// sortRanking. count descending, equal counts by name with other after every named type.
func sortRanking(ranked []TypeCount) {
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if (ranked[i].Type == OTHER_TYPE) != (ranked[j].Type == OTHER_TYPE) {
			return ranked[j].Type == OTHER_TYPE
		}
		return ranked[i].Type < ranked[j].Type
	})
}

// TypeDistribution. CountTypes followed by RankTypes.
func TypeDistribution(buildings []datastructure.Building, topN int) ([]TypeCount, error) {
	return RankTypes(CountTypes(buildings), topN)
}

func TotalCount(ranking []TypeCount) int {
	total := 0
	for _, tc := range ranking {
		total += tc.Count
	}
	return total
}

func TypesChartTitle(topN int) string {
	return fmt.Sprintf("Building types (top-%d)", topN)
}

// ChartSeries. ranking as parallel label and value slices, in ranking order.
func ChartSeries(ranking []TypeCount) ([]string, []float64) {
	labels := make([]string, len(ranking))
	values := make([]float64, len(ranking))
	for i, tc := range ranking {
		labels[i] = tc.Type
		values[i] = float64(tc.Count)
	}
	return labels, values
}
