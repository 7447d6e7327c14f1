package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/BuildingEnergy/pkg/datastructure"
	"github.com/lintang-b-s/BuildingEnergy/pkg/energy"
	"github.com/lintang-b-s/BuildingEnergy/pkg/geo"
	"github.com/lintang-b-s/BuildingEnergy/pkg/util"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DEFAULT_MAP_FILE         = "./data/volga-fed-district-latest.osm.pbf"
	DEFAULT_BUILDINGS_FILE   = "./data/ulyanovsk_buildings.geojson"
	DEFAULT_TYPES_CHART      = "building_types_distribution.png"
	DEFAULT_DENSITY_CHART    = "improved_energy_density_distribution.png"
	DEFAULT_PROGRESS_EVERY   = 100000
	DEFAULT_TOP_N            = 8
	DEFAULT_BINS             = 40
	DEFAULT_PERCENTILE       = 0.95
	DEFAULT_DPI              = 300
	DEFAULT_HEATMAP_CELL     = 0.01
	DEFAULT_API_PORT         = 6060
	DEFAULT_API_TIMEOUT      = 30 * time.Second
	DEFAULT_RATE_LIMIT       = 20.0
	DEFAULT_RATE_LIMIT_BURST = 40
)

var ErrInvalidConfig = errors.New("invalid configuration")

type BBoxConfig struct {
	MinLon float64 `mapstructure:"min_lon" validate:"gte=-180,lte=180"`
	MinLat float64 `mapstructure:"min_lat" validate:"gte=-90,lte=90"`
	MaxLon float64 `mapstructure:"max_lon" validate:"gte=-180,lte=180,gtfield=MinLon"`
	MaxLat float64 `mapstructure:"max_lat" validate:"gte=-90,lte=90,gtfield=MinLat"`
}

func (b BBoxConfig) BoundingBox() (datastructure.BoundingBox, error) {
	return datastructure.NewBoundingBox(b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

type ExtractConfig struct {
	Input         string     `mapstructure:"input" validate:"required"`
	Output        string     `mapstructure:"output" validate:"required"`
	BBox          BBoxConfig `mapstructure:"bbox"`
	ProgressEvery int        `mapstructure:"progress_every" validate:"gte=1"`
}

type EnergyConfig struct {
	Rates        map[string]float64 `mapstructure:"rates" validate:"dive,gte=0"`
	FallbackRate float64            `mapstructure:"fallback_rate" validate:"gte=0"`
	MaxLevels    int                `mapstructure:"max_levels" validate:"gte=0"`
}

// Estimator. rate table from config, the built-in rates when no rates are configured. fallback_rate applies
// either way.
func (e EnergyConfig) Estimator() (*energy.Estimator, error) {
	var (
		table energy.RateTable
		err   error
	)
	if len(e.Rates) == 0 {
		table, err = energy.DefaultRateTableWithFallback(e.FallbackRate)
	} else {
		table, err = energy.NewRateTable(e.Rates, e.FallbackRate)
	}
	if err != nil {
		return nil, err
	}
	return energy.NewEstimator(table, e.MaxLevels), nil
}

type ChartConfig struct {
	DPI        int     `mapstructure:"dpi" validate:"gte=1,lte=1200"`
	WidthInch  float64 `mapstructure:"width_inch" validate:"gte=0"`
	HeightInch float64 `mapstructure:"height_inch" validate:"gte=0"`
}

type TypesConfig struct {
	Input  string      `mapstructure:"input" validate:"required"`
	Output string      `mapstructure:"output" validate:"required"`
	TopN   int         `mapstructure:"top_n" validate:"gte=1"`
	Chart  ChartConfig `mapstructure:"chart"`
}

type DensityConfig struct {
	Input         string      `mapstructure:"input" validate:"required"`
	Output        string      `mapstructure:"output" validate:"required"`
	Bins          int         `mapstructure:"bins" validate:"gte=1"`
	Percentile    float64     `mapstructure:"percentile" validate:"gt=0,lte=1"`
	AreaMethod    string      `mapstructure:"area_method" validate:"oneof=mercator geodesic"`
	Workers       int         `mapstructure:"workers" validate:"gte=1"`
	HeatmapOutput string      `mapstructure:"heatmap_output"`
	CellSize      float64     `mapstructure:"cell_size" validate:"gt=0"`
	Chart         ChartConfig `mapstructure:"chart"`
}

func (d DensityConfig) Method() geo.AreaMethod {
	m, _ := geo.ParseAreaMethod(d.AreaMethod)
	return m
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	Input          string        `mapstructure:"input" validate:"required"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UseRateLimit   bool          `mapstructure:"use_rate_limit"`
	RateLimit      float64       `mapstructure:"rate_limit" validate:"gt=0"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst" validate:"gte=1"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type Config struct {
	Extract ExtractConfig `mapstructure:"extract"`
	Energy  EnergyConfig  `mapstructure:"energy"`
	Types   TypesConfig   `mapstructure:"types"`
	Density DensityConfig `mapstructure:"density"`
	Server  ServerConfig  `mapstructure:"server"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("extract.input", DEFAULT_MAP_FILE)
	v.SetDefault("extract.output", DEFAULT_BUILDINGS_FILE)
	v.SetDefault("extract.bbox.min_lon", 48.20)
	v.SetDefault("extract.bbox.min_lat", 54.25)
	v.SetDefault("extract.bbox.max_lon", 48.50)
	v.SetDefault("extract.bbox.max_lat", 54.40)
	v.SetDefault("extract.progress_every", DEFAULT_PROGRESS_EVERY)

	v.SetDefault("energy.fallback_rate", energy.DEFAULT_FALLBACK_RATE)
	v.SetDefault("energy.max_levels", 0)

	v.SetDefault("types.input", DEFAULT_BUILDINGS_FILE)
	v.SetDefault("types.output", DEFAULT_TYPES_CHART)
	v.SetDefault("types.top_n", DEFAULT_TOP_N)
	v.SetDefault("types.chart.dpi", DEFAULT_DPI)
	v.SetDefault("types.chart.width_inch", 10)
	v.SetDefault("types.chart.height_inch", 6)

	v.SetDefault("density.input", DEFAULT_BUILDINGS_FILE)
	v.SetDefault("density.output", DEFAULT_DENSITY_CHART)
	v.SetDefault("density.bins", DEFAULT_BINS)
	v.SetDefault("density.percentile", DEFAULT_PERCENTILE)
	v.SetDefault("density.area_method", string(geo.AREA_MERCATOR))
	v.SetDefault("density.workers", 4)
	v.SetDefault("density.heatmap_output", "")
	v.SetDefault("density.cell_size", DEFAULT_HEATMAP_CELL)
	v.SetDefault("density.chart.dpi", DEFAULT_DPI)
	v.SetDefault("density.chart.width_inch", 12)
	v.SetDefault("density.chart.height_inch", 10)

	v.SetDefault("server.port", DEFAULT_API_PORT)
	v.SetDefault("server.input", DEFAULT_BUILDINGS_FILE)
	v.SetDefault("server.timeout", DEFAULT_API_TIMEOUT)
	v.SetDefault("server.use_rate_limit", false)
	v.SetDefault("server.rate_limit", DEFAULT_RATE_LIMIT)
	v.SetDefault("server.rate_limit_burst", DEFAULT_RATE_LIMIT_BURST)
	v.SetDefault("server.allowed_origins", []string{"*"})
}

// Flags. command line overrides shared by every command, bound to viper keys by Load.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to config.yaml (default ./data/config.yaml)")
	fs.String("input", "", "input file, OSM extract for the extractor, building collection for the others")
	fs.String("output", "", "output file")
	fs.Int("top_n", DEFAULT_TOP_N, "number of building types kept before merging into other")
	fs.Int("bins", DEFAULT_BINS, "histogram bins")
	fs.Float64("percentile", DEFAULT_PERCENTILE, "percentile used to trim the density histogram")
	fs.String("area_method", string(geo.AREA_MERCATOR), "footprint area method: mercator or geodesic")
	fs.Int("dpi", DEFAULT_DPI, "chart resolution")
	fs.String("heatmap_output", "", "optional GeoJSON heatmap output")
	fs.Int("port", DEFAULT_API_PORT, "http port")
	fs.Bool("use_rate_limit", false, "enable the token bucket rate limiter")
	return fs
}

// flagKeys. flag name -> viper keys it overrides, per command section.
func flagKeys(section string) map[string][]string {
	if section == "pipeline" {
		return map[string][]string{
			"input":  {"extract.input"},
			"output": {"extract.output", "types.input", "density.input"},
		}
	}

	keys := map[string][]string{
		"input":  {section + ".input"},
		"output": {section + ".output"},
	}
	switch section {
	case "types":
		keys["top_n"] = []string{"types.top_n"}
		keys["dpi"] = []string{"types.chart.dpi"}
	case "density":
		keys["bins"] = []string{"density.bins"}
		keys["percentile"] = []string{"density.percentile"}
		keys["area_method"] = []string{"density.area_method"}
		keys["dpi"] = []string{"density.chart.dpi"}
		keys["heatmap_output"] = []string{"density.heatmap_output"}
	case "server":
		delete(keys, "output")
		keys["port"] = []string{"server.port"}
		keys["use_rate_limit"] = []string{"server.use_rate_limit"}
	}
	return keys
}

// Load. defaults < config file < BEE_* env < flags that were set explicitly. section picks which config
// section the generic --input/--output flags override ("extract", "types", "density", "server" or "pipeline").
func Load(fs *pflag.FlagSet, args []string, section string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	SetDefaults(v)
	for name, keys := range flagKeys(section) {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		for _, key := range keys {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	configFile, _ := fs.GetString("config")
	if err := util.ReadConfig(v, configFile); err != nil {
		return nil, err
	}
	return decode(v)
}

// LoadFile. configuration from defaults, the given file and env, without flags.
func LoadFile(configFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	if err := util.ReadConfig(v, configFile); err != nil {
		return nil, err
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)

		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, e.Namespace()+": "+e.Translate(trans))
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}

	if _, err := c.Extract.BBox.BoundingBox(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Energy.Estimator(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
