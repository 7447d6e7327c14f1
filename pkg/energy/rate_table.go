package energy

import (
	"fmt"
	"math"
	"sort"
)

const DEFAULT_FALLBACK_RATE = 50000.0

// defaultRates. energy per level by building tag value. Heuristic placeholder, not a physical model.
var defaultRates = map[string]float64{
	"residential": 50000,
	"apartments":  75000,
	"commercial":  150000,
	"retail":      100000,
	"industrial":  300000,
	"school":      200000,
	"hospital":    500000,
}

// RateTable. immutable building type -> energy-per-level mapping with a fallback for unlisted types.
type RateTable struct {
	rates    map[string]float64
	fallback float64
}

func DefaultRateTable() RateTable {
	t, _ := NewRateTable(defaultRates, DEFAULT_FALLBACK_RATE)
	return t
}

// DefaultRateTableWithFallback. built-in rates with a custom fallback for unlisted types.
func DefaultRateTableWithFallback(fallback float64) (RateTable, error) {
	return NewRateTable(defaultRates, fallback)
}

// NewRateTable. rates are copied, later changes to the argument map do not leak into the table.
func NewRateTable(rates map[string]float64, fallback float64) (RateTable, error) {
	if !validRate(fallback) {
		return RateTable{}, fmt.Errorf("fallback rate must be a finite non-negative number, got %v", fallback)
	}
	copied := make(map[string]float64, len(rates))
	for tipe, rate := range rates {
		if !validRate(rate) {
			return RateTable{}, fmt.Errorf("rate for %q must be a finite non-negative number, got %v", tipe, rate)
		}
		copied[tipe] = rate
	}
	return RateTable{rates: copied, fallback: fallback}, nil
}

func validRate(r float64) bool {
	return !math.IsNaN(r) && !math.IsInf(r, 0) && r >= 0
}

// Rate. exact match on the building tag value, fallback otherwise.
func (t RateTable) Rate(buildingType string) float64 {
	if rate, ok := t.rates[buildingType]; ok {
		return rate
	}
	return t.fallback
}

func (t RateTable) Lookup(buildingType string) (float64, bool) {
	rate, ok := t.rates[buildingType]
	return rate, ok
}

func (t RateTable) Fallback() float64 {
	return t.fallback
}

// Types. listed building types in alphabetical order.
func (t RateTable) Types() []string {
	types := make([]string, 0, len(t.rates))
	for tipe := range t.rates {
		types = append(types, tipe)
	}
	sort.Strings(types)
	return types
}
