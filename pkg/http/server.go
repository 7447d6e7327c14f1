package http

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/BuildingEnergy/pkg/config"
	http_router "github.com/lintang-b-s/BuildingEnergy/pkg/http/router"
	"github.com/lintang-b-s/BuildingEnergy/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/BuildingEnergy/pkg/http/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use. starts the API in the background, Wait returns once it stopped.
func (s *Server) Use(
	ctx context.Context,
	cfg config.ServerConfig,
	buildingService controllers.BuildingService,
) *Server {
	serverConfig := http_server.Config{
		Port:    cfg.Port,
		Timeout: cfg.Timeout,
	}
	opts := http_router.Options{
		UseRateLimit:   cfg.UseRateLimit,
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: cfg.RateLimitBurst,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	api := http_router.NewAPI(s.Log)
	s.g.Go(func() error {
		err := api.Run(ctx, serverConfig, opts, buildingService)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	return s
}

func (s *Server) Wait() error {
	return s.g.Wait()
}

// GracefulShutdown. blocks until SIGINT or SIGTERM arrives, or ctx is done.
func GracefulShutdown(ctx context.Context) os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		return sig
	case <-ctx.Done():
		return nil
	}
}
