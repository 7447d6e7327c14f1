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
	cfg, err := config.Load(config.Flags("extractor"), os.Args[1:], "extract")
	if err != nil {
		panic(err)
	}
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	report, err := pipeline.Extract(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}
	fmt.Print(pipeline.FormatReport(report))
}
