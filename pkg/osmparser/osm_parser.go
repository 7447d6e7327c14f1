package osmparser

import (
	"context"
	"errors"
	"fmt"

	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"go.uber.org/zap"
)

const (
	BUILDING_TAG = "building"
	LEVELS_TAG   = "building:levels"
	NAME_TAG     = "name"
)

type buildingWay struct {
	id        int64
	tipe      string
	name      string
	rawLevels string
	nodeRefs  []int64
}

type OsmParser struct {
	wayNodeMap      map[int64]struct{}
	acceptedNodeMap map[int64]orb.Point
	buildingWays    []buildingWay
	skipCounts      map[SkipReason]int
	skipped         []ElementResult
	progressEvery   int
}

func NewOSMParser(progressEvery int) *OsmParser {
	if progressEvery <= 0 {
		progressEvery = 100000
	}
	return &OsmParser{
		wayNodeMap:      make(map[int64]struct{}),
		acceptedNodeMap: make(map[int64]orb.Point),
		buildingWays:    make([]buildingWay, 0),
		skipCounts:      make(map[SkipReason]int),
		skipped:         make([]ElementResult, 0),
		progressEvery:   progressEvery,
	}
}

// Parse. two passes over the source: building ways and their node refs first, then the coordinates of
// exactly those nodes. Malformed buildings are skipped and reported, source errors abort the parse.
func (p *OsmParser) Parse(ctx context.Context, src Source, logger *zap.Logger) (*ParseResult, error) {
	scannedWays, err := p.scanWays(ctx, src, logger)
	if err != nil {
		return nil, err
	}
	logger.Sugar().Infof("found %d building ways referencing %d nodes", len(p.buildingWays), len(p.wayNodeMap))

	if err := p.scanNodes(ctx, src, logger); err != nil {
		return nil, err
	}

	buildings := make([]BuildingWay, 0, len(p.buildingWays))
	for _, bw := range p.buildingWays {
		polygon, reason, err := p.resolvePolygon(bw)
		if err != nil {
			p.skip(bw.id, reason, err, logger)
			continue
		}
		buildings = append(buildings, NewBuildingWay(bw.id, bw.tipe, bw.name, bw.rawLevels, polygon))
	}

	logger.Sugar().Infof("resolved %d building polygons", len(buildings))

	return &ParseResult{
		Buildings:   buildings,
		Skipped:     p.skipped,
		SkipCounts:  p.skipCounts,
		ScannedWays: scannedWays,
	}, nil
}

func (p *OsmParser) scanWays(ctx context.Context, src Source, logger *zap.Logger) (int, error) {
	scanner, err := src.Open(ctx, WAY_PASS)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer scanner.Close()

	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if (countWays+1)%p.progressEvery == 0 {
			logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		if !way.Tags.HasTag(BUILDING_TAG) {
			p.skipCounts[SKIP_NOT_BUILDING]++
			continue
		}

		if len(way.Nodes) < 3 {
			p.skip(int64(way.ID), SKIP_TOO_FEW_VERTICES, geo.ErrTooFewVertices, logger)
			continue
		}

		tipe := way.Tags.Find(BUILDING_TAG)
		if tipe == "" {
			tipe = datastructure.UNKNOWN_BUILDING_TYPE
		}

		nodeRefs := make([]int64, 0, len(way.Nodes))
		for _, node := range way.Nodes {
			nodeRefs = append(nodeRefs, int64(node.ID))
			p.wayNodeMap[int64(node.ID)] = struct{}{}
		}

		p.buildingWays = append(p.buildingWays, buildingWay{
			id:        int64(way.ID),
			tipe:      tipe,
			name:      way.Tags.Find(NAME_TAG),
			rawLevels: way.Tags.Find(LEVELS_TAG),
			nodeRefs:  nodeRefs,
		})
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan ways of %s: %w", src.Name(), err)
	}
	return countWays, nil
}

func (p *OsmParser) scanNodes(ctx context.Context, src Source, logger *zap.Logger) error {
	scanner, err := src.Open(ctx, NODE_PASS)
	if err != nil {
		return fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer scanner.Close()

	countNodes := 0
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if (countNodes+1)%(p.progressEvery*5) == 0 {
			logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
		}
		countNodes++

		if _, ok := p.wayNodeMap[int64(node.ID)]; ok {
			p.acceptedNodeMap[int64(node.ID)] = orb.Point{node.Lon, node.Lat}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan nodes of %s: %w", src.Name(), err)
	}
	return nil
}

func (p *OsmParser) resolvePolygon(bw buildingWay) (orb.Polygon, SkipReason, error) {
	points := make([]orb.Point, 0, len(bw.nodeRefs))
	for _, ref := range bw.nodeRefs {
		coord, ok := p.acceptedNodeMap[ref]
		if !ok {
			return nil, SKIP_MISSING_NODE, fmt.Errorf("node %d not found in extract", ref)
		}
		points = append(points, coord)
	}

	polygon, err := geo.NewPolygon(points)
	switch {
	case err == nil:
		return polygon, "", nil
	case errors.Is(err, geo.ErrTooFewVertices):
		return nil, SKIP_TOO_FEW_VERTICES, err
	case errors.Is(err, geo.ErrInvalidCoordinate):
		return nil, SKIP_INVALID_COORDINATE, err
	default:
		return nil, SKIP_DEGENERATE_POLYGON, err
	}
}

func (p *OsmParser) skip(wayID int64, reason SkipReason, err error, logger *zap.Logger) {
	p.skipCounts[reason]++
	p.skipped = append(p.skipped, NewElementResult(wayID, reason, err))
	if !reason.Silent() {
		logger.Warn("error processing building way",
			zap.Int64("way_id", wayID), zap.String("reason", string(reason)), zap.Error(err))
	}
}
