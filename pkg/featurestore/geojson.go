package featurestore

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/util"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	PROP_ID     = "id"
	PROP_TYPE   = "type"
	PROP_NAME   = "name"
	PROP_LEVELS = "levels"
	PROP_ENERGY = "energy"
)

var ErrInvalidFeature = errors.New("invalid building feature")

// ToFeatureCollection. one polygon feature per building, collection bbox covers all footprints.
func ToFeatureCollection(buildings []datastructure.Building) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	var bound orb.Bound
	for i, b := range buildings {
		f := geojson.NewFeature(b.GetGeometry())
		f.ID = b.GetID()
		f.Properties[PROP_ID] = b.GetID()
		f.Properties[PROP_TYPE] = b.GetType()
		f.Properties[PROP_NAME] = b.GetName()
		f.Properties[PROP_LEVELS] = b.GetLevels()
		f.Properties[PROP_ENERGY] = b.GetEnergy()
		fc.Append(f)

		if i == 0 {
			bound = b.GetGeometry().Bound()
		} else {
			bound = bound.Union(b.GetGeometry().Bound())
		}
	}
	if len(buildings) > 0 {
		fc.BBox = geojson.NewBBox(bound)
	}
	return fc
}

// Write. the collection lands at filename only after it has been fully written.
func Write(filename string, buildings []datastructure.Building) error {
	fc := ToFeatureCollection(buildings)
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal feature collection: %w", err)
	}

	return util.WriteFileAtomic(filename, func(w *bufio.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Read. loads a building collection written by Write (or any GeoJSON with polygon footprints and an energy
// property). Missing type becomes unknown, missing levels become 1.
func Read(filename string) ([]datastructure.Building, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read feature collection: %w", err)
	}
	return Decode(data)
}

func Decode(data []byte) ([]datastructure.Building, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	buildings := make([]datastructure.Building, 0, len(fc.Features))
	for i, f := range fc.Features {
		b, err := fromFeature(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		buildings = append(buildings, b)
	}
	return buildings, nil
}

func fromFeature(f *geojson.Feature) (datastructure.Building, error) {
	var polygon orb.Polygon
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		polygon = g
	case orb.MultiPolygon:
		if len(g) != 1 {
			return datastructure.Building{}, fmt.Errorf("%w: multipolygon with %d parts", ErrInvalidFeature, len(g))
		}
		polygon = g[0]
	default:
		return datastructure.Building{}, fmt.Errorf("%w: geometry must be a polygon", ErrInvalidFeature)
	}

	energy, ok := f.Properties[PROP_ENERGY].(float64)
	if !ok || math.IsNaN(energy) || energy < 0 {
		return datastructure.Building{}, fmt.Errorf("%w: energy must be a non-negative number", ErrInvalidFeature)
	}

	id, ok := int64Value(f.Properties[PROP_ID])
	if !ok {
		id, _ = int64Value(f.ID)
	}

	tipe, _ := f.Properties[PROP_TYPE].(string)
	if tipe == "" {
		tipe = datastructure.UNKNOWN_BUILDING_TYPE
	}

	name, _ := f.Properties[PROP_NAME].(string)

	levels := 1
	if l, ok := int64Value(f.Properties[PROP_LEVELS]); ok {
		levels = int(l)
	}

	return datastructure.NewBuilding(
		id,
		tipe,
		name,
		levels,
		energy,
		polygon,
	), nil
}

// int64Value. numbers decode as float64, older collections carry ids and levels as digit strings.
func int64Value(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case float64:
		return int64(val), true
	case int64:
		return val, true
	case int:
		return int64(val), true
	case string:
		if !util.IsDigits(val) {
			return 0, false
		}
		i, err := strconv.ParseInt(val, 10, 64)
		return i, err == nil
	}
	return 0, false
}
