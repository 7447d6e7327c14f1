package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/BuildingEnergy/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/BuildingEnergy/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/BuildingEnergy/pkg/http/server"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

// Options. middleware settings, the limiter is only installed when UseRateLimit is set.
type Options struct {
	UseRateLimit   bool
	RateLimit      float64
	RateLimitBurst int
	AllowedOrigins []string
}

// Handler. full middleware chain in front of the /api routes.
func (api *API) Handler(opts Options, buildingService controllers.BuildingService) http.Handler {
	router := httprouter.New()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300, //nolint:mnd // ignore
	})

	group := router_helper.NewRouteGroup(router, "/api")
	controllers.New(buildingService, api.log).Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, api.recoverPanic, RealIP, Heartbeat("/healthz"), Logger(api.log)}
	if opts.UseRateLimit {
		mwChain = append(mwChain, Limit(rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimitBurst)))
	}
	return alice.New(mwChain...).Then(router)
}

// Run. serves until ctx is cancelled or the listener fails.
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	opts Options,
	buildingService controllers.BuildingService,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(opts, buildingService), config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		api.log.Info("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		_ = srv.Shutdown(context.Background())
		return nil
	}
}
