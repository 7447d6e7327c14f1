package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/lintang-b-s/BuildingEnergy/pkg/analyzer"
	"github.com/lintang-b-s/BuildingEnergy/pkg/chart"
	"github.com/lintang-b-s/BuildingEnergy/pkg/config"
	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/extractor"
	"github.com/lintang-b-s/BuildingEnergy/pkg/featurestore"
	"github.com/lintang-b-s/BuildingEnergy/pkg/geo"
	"github.com/lintang-b-s/BuildingEnergy/pkg/spatialindex"
	"github.com/lintang-b-s/BuildingEnergy/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Extract. OSM extract -> building collection, as configured in cfg.Extract and cfg.Energy.
func Extract(ctx context.Context, cfg *config.Config, log *zap.Logger) (*extractor.Report, error) {
	bbox, err := cfg.Extract.BBox.BoundingBox()
	if err != nil {
		return nil, err
	}
	estimator, err := cfg.Energy.Estimator()
	if err != nil {
		return nil, err
	}

	ex := extractor.NewExtractor(extractor.Config{
		BoundingBox:   bbox,
		Estimator:     estimator,
		ProgressEvery: cfg.Extract.ProgressEvery,
	}, log)
	return ex.Run(ctx, cfg.Extract.Input, cfg.Extract.Output)
}

// AnalyzeTypes. type ranking of the collection, rendered to cfg.Types.Output and returned as a printable table.
func AnalyzeTypes(ctx context.Context, cfg *config.Config, log *zap.Logger) (string, error) {
	buildings, err := featurestore.Read(cfg.Types.Input)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ranking, err := analyzer.TypeDistribution(buildings, cfg.Types.TopN)
	if err != nil {
		return "", err
	}
	if len(ranking) == 0 {
		return "", fmt.Errorf("%s: %w", cfg.Types.Input, chart.ErrNoData)
	}

	labels, values := analyzer.ChartSeries(ranking)
	err = chart.SaveBarChart(cfg.Types.Output, analyzer.TypesChartTitle(cfg.Types.TopN), labels, values, chart.Options{
		WidthInch:  cfg.Types.Chart.WidthInch,
		HeightInch: cfg.Types.Chart.HeightInch,
		DPI:        cfg.Types.Chart.DPI,
	})
	if err != nil {
		return "", fmt.Errorf("save %s: %w", cfg.Types.Output, err)
	}
	log.Sugar().Infof("building type chart saved to %s", cfg.Types.Output)

	return FormatTypeTable(ranking), nil
}

func FormatTypeTable(ranking []analyzer.TypeCount) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "type\tcount\t")
	for _, tc := range ranking {
		fmt.Fprintf(tw, "%s\t%s\t\n", tc.Type, humanize.Comma(int64(tc.Count)))
	}
	fmt.Fprintf(tw, "total\t%s\t\n", humanize.Comma(int64(analyzer.TotalCount(ranking))))
	tw.Flush()
	return sb.String()
}

// AnalyzeDensity. energy density histograms into cfg.Density.Output, optional heatmap, printable summary.
func AnalyzeDensity(ctx context.Context, cfg *config.Config, log *zap.Logger) (string, error) {
	dc := cfg.Density
	buildings, err := featurestore.Read(dc.Input)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res := analyzer.ComputeDensities(buildings, dc.Method(), dc.Workers)
	if res.Excluded > 0 {
		log.Warn("buildings without positive area excluded from density", zap.Int("excluded", res.Excluded))
	}

	summary, err := analyzer.Summarize(res.Densities, dc.Percentile)
	if err != nil {
		return "", fmt.Errorf("density summary: %w", err)
	}
	trimmed, _, _, err := analyzer.SplitAtPercentile(res.Densities, dc.Percentile)
	if err != nil {
		return "", err
	}

	unit := "energy / projected m²"
	if dc.Method() == geo.AREA_GEODESIC {
		unit = "energy / m²"
	}
	panels := []chart.HistogramPanel{
		{
			Title:  "Energy density (log10)",
			XLabel: "log10(" + unit + ")",
			Values: analyzer.Log10Series(res.Densities),
			Bins:   dc.Bins,
		},
		{
			Title:  fmt.Sprintf("Energy density up to the %s percentile", percentLabel(dc.Percentile)),
			XLabel: unit,
			Values: trimmed,
			Bins:   dc.Bins,
		},
	}
	err = chart.SaveHistograms(dc.Output, panels, chart.Options{
		WidthInch:  dc.Chart.WidthInch,
		HeightInch: dc.Chart.HeightInch,
		DPI:        dc.Chart.DPI,
	})
	if err != nil {
		return "", fmt.Errorf("save %s: %w", dc.Output, err)
	}
	log.Sugar().Infof("energy density chart saved to %s", dc.Output)

	if dc.HeatmapOutput != "" {
		if err := writeHeatmap(dc, buildings, res.Areas, log); err != nil {
			return "", err
		}
	}

	return FormatSummary(summary, res.Excluded), nil
}

func writeHeatmap(dc config.DensityConfig, buildings []datastructure.Building, areas []float64, log *zap.Logger) error {
	index := spatialindex.NewRtree()
	index.Build(buildings, log)
	cells, err := analyzer.BuildHeatmap(buildings, areas, dc.CellSize, index)
	if err != nil {
		return err
	}
	data, err := analyzer.HeatmapFeatureCollection(cells).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal heatmap: %w", err)
	}
	err = util.WriteFileAtomic(dc.HeatmapOutput, func(w *bufio.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", dc.HeatmapOutput, err)
	}
	log.Sugar().Infof("energy heatmap with %d cells saved to %s", len(cells), dc.HeatmapOutput)
	return nil
}

func FormatSummary(s analyzer.Summary, excluded int) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "buildings\t%s\n", humanize.Comma(int64(s.Count)))
	fmt.Fprintf(tw, "excluded (area <= 0)\t%s\n", humanize.Comma(int64(excluded)))
	fmt.Fprintf(tw, "min\t%s\n", util.FormatFloat(s.Min))
	fmt.Fprintf(tw, "max\t%s\n", util.FormatFloat(s.Max))
	fmt.Fprintf(tw, "median\t%s\n", util.FormatFloat(s.Median))
	fmt.Fprintf(tw, "mean\t%s\n", util.FormatFloat(s.Mean))
	fmt.Fprintf(tw, "std\t%s\n", util.FormatFloat(s.StdDev))
	fmt.Fprintf(tw, "%s percentile\t%s\n", percentLabel(s.Percentile), util.FormatFloat(s.PercentileValue))
	fmt.Fprintf(tw, "above percentile\t%.2f%%\n", s.FractionAbove*100)
	tw.Flush()
	return sb.String()
}

func percentLabel(p float64) string {
	return humanize.Ftoa(p*100) + "th"
}

// Run. extraction followed by both analyzers, which run concurrently. Reports are written to out in a fixed
// order once both analyzers finished.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer) error {
	report, err := Extract(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	fmt.Fprint(out, FormatReport(report))

	var typesTable, densityTable string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		typesTable, err = AnalyzeTypes(gctx, cfg, log)
		if err != nil {
			return fmt.Errorf("type analysis: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		densityTable, err = AnalyzeDensity(gctx, cfg, log)
		if err != nil {
			return fmt.Errorf("density analysis: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprint(out, typesTable)
	fmt.Fprint(out, densityTable)
	return nil
}

func FormatReport(r *extractor.Report) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "scanned ways\t%s\n", humanize.Comma(int64(r.ScannedWays)))
	fmt.Fprintf(tw, "retained buildings\t%s\n", humanize.Comma(int64(r.Retained)))
	for _, reason := range r.Reasons() {
		fmt.Fprintf(tw, "skipped %s\t%s\n", reason, humanize.Comma(int64(r.SkipCounts[reason])))
	}
	tw.Flush()
	return sb.String()
}
