package main

import (
	"context"
	"os"

	"github.com/lintang-b-s/BuildingEnergy/pkg/config"
	"github.com/lintang-b-s/BuildingEnergy/pkg/featurestore"
	"github.com/lintang-b-s/BuildingEnergy/pkg/http"
	"github.com/lintang-b-s/BuildingEnergy/pkg/http/usecases"
	"github.com/lintang-b-s/BuildingEnergy/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(config.Flags("server"), os.Args[1:], "server")
	if err != nil {
		panic(err)
	}
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	buildings, err := featurestore.Read(cfg.Server.Input)
	if err != nil {
		panic(err)
	}
	logger.Info("building collection loaded", zap.String("file", cfg.Server.Input), zap.Int("buildings", len(buildings)))

	buildingService := usecases.NewBuildingService(logger, buildings, cfg.Density.Method(), cfg.Density.Workers)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	api := http.NewServer(logger).Use(ctx, cfg.Server, buildingService)
	logger.Info("building energy api started", zap.Int("port", cfg.Server.Port))

	signal := http.GracefulShutdown(ctx)
	if signal != nil {
		logger.Info("building energy api stopping", zap.String("signal", signal.String()))
	}
	cleanup()

	if err := api.Wait(); err != nil {
		panic(err)
	}
	logger.Info("building energy api stopped")
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
