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
	cfg, err := config.Load(config.Flags("typeanalyzer"), os.Args[1:], "types")
	if err != nil {
		panic(err)
	}
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	table, err := pipeline.AnalyzeTypes(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}
	fmt.Print(table)
}
