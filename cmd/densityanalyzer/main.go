package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lintang-b-s/BuildingEnergy/pkg/config"
	"github.com/lintang-b-s/BuildingEnergy/pkg/logger"
	"github.com/lintang-b-s/BuildingEnergy/pkg/pipeline"
)

func main() {
	cfg, err := config.Load(config.Flags("densityanalyzer"), os.Args[1:], "density")
	if err != nil {
		panic(err)
	}
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	summary, err := pipeline.AnalyzeDensity(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}
	fmt.Print(summary)
}
