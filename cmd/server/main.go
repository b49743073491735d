package main

import (
	"context"
	"fmt"
	"net/http"
	"pokeapp/internal/auth"
	"pokeapp/internal/config"
	"pokeapp/internal/constants"
	fxmodules "pokeapp/internal/fx"
	"pokeapp/internal/middleware"
	"pokeapp/internal/server"
	"pokeapp/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

type mirrors struct {
	fx.In

	Trainers *service.TrainerRepository
	Battles  *service.BattleRepository
	Pokemon  *service.PokemonRepository
	Users    *auth.UserRepository
}

// warmUp fills every local mirror once so the first requests are served
// from memory. A collection that fails to load stays empty.
func warmUp(ctx context.Context, m mirrors, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, constants.WarmupTimeout)
	defer cancel()

	loaders := map[string]func(context.Context) error{
		constants.TrainersCollection: func(ctx context.Context) error { _, err := m.Trainers.Load(ctx); return err },
		constants.BattlesCollection:  func(ctx context.Context) error { _, err := m.Battles.Load(ctx); return err },
		constants.PokemonCollection:  func(ctx context.Context) error { _, err := m.Pokemon.Load(ctx); return err },
		constants.UsersCollection:    func(ctx context.Context) error { _, err := m.Users.Load(ctx); return err },
	}

	var g errgroup.Group
	for name, load := range loaders {
		name, load := name, load
		g.Go(func() error {
			if err := load(ctx); err != nil {
				logger.Warn().Err(err).Str("collection", name).Msg("warm-up load failed")
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn().Msg("warm-up finished with errors")
		return
	}
	logger.Info().Msg("local mirrors warmed up")
}

// withMiddleware puts Recover outermost so panics in any layer, including
// the request id and extra layers, still answer 500.
func withMiddleware(h http.Handler, logger zerolog.Logger, extra ...middleware.Middleware) http.Handler {
	layers := append([]middleware.Middleware{
		middleware.Recover(logger),
		middleware.RequestID(logger),
	}, extra...)
	return middleware.Chain(h, layers...)
}

func runServer(
	lc fx.Lifecycle,
	pokeAppServer *server.PokeAppServer,
	authManager *auth.Manager,
	m mirrors,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	path, handler := server.NewPokeAppHandler(
		pokeAppServer,
		connect.WithInterceptors(server.NewAuthInterceptor(authManager)),
	)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	mux := http.NewServeMux()
	mux.Handle(path, withMiddleware(handler, logger, c.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: mux,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			warmUp(ctx, m, logger)

			go func() {
				logger.Info().Str("addr", srv.Addr).Str("path", path).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
