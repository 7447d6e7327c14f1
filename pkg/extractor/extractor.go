package extractor

import (
	"context"
	"fmt"
	"sort"

	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/energy"
	"github.com/lintang-b-s/BuildingEnergy/pkg/featurestore"
	"github.com/lintang-b-s/BuildingEnergy/pkg/osmparser"
	"go.uber.org/zap"
)

type Config struct {
	BoundingBox   datastructure.BoundingBox
	Estimator     *energy.Estimator
	ProgressEvery int
}

// Report. outcome of one extraction run: what was kept and why everything else was dropped.
type Report struct {
	ScannedWays int
	Retained    int
	SkipCounts  map[osmparser.SkipReason]int
	Skipped     []osmparser.ElementResult
}

func (r *Report) TotalSkipped() int {
	total := 0
	for _, c := range r.SkipCounts {
		total += c
	}
	return total
}

// Reasons. skip reasons in a stable order for printing.
func (r *Report) Reasons() []osmparser.SkipReason {
	reasons := make([]osmparser.SkipReason, 0, len(r.SkipCounts))
	for reason := range r.SkipCounts {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool {
		return reasons[i] < reasons[j]
	})
	return reasons
}

type Extractor struct {
	cfg    Config
	logger *zap.Logger
}

func NewExtractor(cfg Config, logger *zap.Logger) *Extractor {
	return &Extractor{
		cfg:    cfg,
		logger: logger,
	}
}

// Extract. parse -> centroid filter -> energy annotation. Buildings keep the order of the source file.
func (e *Extractor) Extract(ctx context.Context, src osmparser.Source) ([]datastructure.Building, *Report, error) {
	e.logger.Sugar().Infof("extracting buildings from %s within %s", src.Name(), e.cfg.BoundingBox)

	parser := osmparser.NewOSMParser(e.cfg.ProgressEvery)
	parsed, err := parser.Parse(ctx, src, e.logger)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{
		ScannedWays: parsed.ScannedWays,
		SkipCounts:  make(map[osmparser.SkipReason]int, len(parsed.SkipCounts)+1),
		Skipped:     parsed.Skipped,
	}
	for reason, c := range parsed.SkipCounts {
		report.SkipCounts[reason] = c
	}

	buildings := make([]datastructure.Building, 0, len(parsed.Buildings))
	for _, bw := range parsed.Buildings {
		candidate := datastructure.NewBuilding(bw.GetID(), bw.GetType(), bw.GetName(), 0, 0, bw.GetPolygon())
		if !e.cfg.BoundingBox.ContainsStrict(candidate.Centroid()) {
			report.SkipCounts[osmparser.SKIP_OUTSIDE_BBOX]++
			report.Skipped = append(report.Skipped,
				osmparser.NewElementResult(bw.GetID(), osmparser.SKIP_OUTSIDE_BBOX, nil))
			continue
		}

		levels := e.cfg.Estimator.Levels(bw.GetRawLevels())
		buildings = append(buildings, datastructure.NewBuilding(
			bw.GetID(),
			bw.GetType(),
			bw.GetName(),
			levels,
			e.cfg.Estimator.Estimate(bw.GetType(), levels),
			bw.GetPolygon(),
		))
	}
	report.Retained = len(buildings)

	e.logger.Info("extraction finished",
		zap.Int("scanned_ways", report.ScannedWays),
		zap.Int("retained", report.Retained),
		zap.Int("skipped", report.TotalSkipped()))
	for _, reason := range report.Reasons() {
		e.logger.Info("skipped ways", zap.String("reason", string(reason)), zap.Int("count", report.SkipCounts[reason]))
	}

	return buildings, report, nil
}

// Run. extract from mapFile and persist the collection to outputFile.
func (e *Extractor) Run(ctx context.Context, mapFile, outputFile string) (*Report, error) {
	src, err := osmparser.NewFileSource(mapFile)
	if err != nil {
		return nil, err
	}

	buildings, report, err := e.Extract(ctx, src)
	if err != nil {
		return nil, err
	}

	if err := featurestore.Write(outputFile, buildings); err != nil {
		return nil, fmt.Errorf("write %s: %w", outputFile, err)
	}
	e.logger.Sugar().Infof("buildings saved to %s", outputFile)
	return report, nil
}
