package main

import (
	"context"
	"os"

	"github.com/lintang-b-s/BuildingEnergy/pkg/config"
	"github.com/lintang-b-s/BuildingEnergy/pkg/logger"
	"github.com/lintang-b-s/BuildingEnergy/pkg/pipeline"
)

func main() {
	cfg, err := config.Load(config.Flags("buildingenergy"), os.Args[1:], "pipeline")
	if err != nil {
		panic(err)
	}
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := pipeline.Run(context.Background(), cfg, logger, os.Stdout); err != nil {
		panic(err)
	}
}
