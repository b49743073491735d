package fx

import (
	"context"
	"fmt"
	"pokeapp/internal/api"
	"pokeapp/internal/auth"
	"pokeapp/internal/config"
	"pokeapp/internal/constants"
	"pokeapp/internal/database"
	"pokeapp/internal/docstore"
	"pokeapp/internal/domain"
	"pokeapp/internal/logger"
	"pokeapp/internal/repository"
	"pokeapp/internal/schema"
	"pokeapp/internal/server"
	"pokeapp/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideStore opens the document store selected by STORE_DRIVER and closes
// it when the app stops.
func ProvideStore(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (docstore.Store, error) {
	var store docstore.Store

	switch cfg.StoreDriver {
	case config.StoreSQLite:
		db, err := database.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		store = docstore.NewSQLiteStore(db, logger)
	case config.StoreMongo:
		ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
		defer cancel()

		client, err := docstore.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		store = docstore.NewMongoStore(client, cfg.MongoDatabase, logger)
	case config.StoreMemory:
		logger.Warn().Msg("using in-memory store, documents are lost on restart")
		store = docstore.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := store.Close(ctx); err != nil {
				logger.Warn().Err(err).Msg("error closing document store")
			}
			return nil
		},
	})

	logger.Info().Str("driver", cfg.StoreDriver).Msg("document store ready")
	return store, nil
}

func ProvideTrainerRepository(store docstore.Store, logger zerolog.Logger) *service.TrainerRepository {
	return repository.NewCollectionRepository[domain.Trainer](store, schema.TrainerSchema{}, logger)
}

func ProvideBattleRepository(store docstore.Store, logger zerolog.Logger) *service.BattleRepository {
	return repository.NewCollectionRepository[domain.Battle](store, schema.BattleSchema{}, logger)
}

func ProvidePokemonRepository(store docstore.Store, logger zerolog.Logger) *service.PokemonRepository {
	return repository.NewCollectionRepository[domain.PokemonSummary](store, schema.PokemonSchema{}, logger)
}

func ProvideUserRepository(store docstore.Store, logger zerolog.Logger) *auth.UserRepository {
	return repository.NewCollectionRepository[domain.User](store, schema.UserSchema{}, logger)
}

func ProvidePokemonSource(client *api.PokeAPIClient) service.PokemonSource {
	return client
}

// ProvideDetailCache returns the Redis backed cache when REDIS_ADDR is set.
// An unreachable Redis at startup is logged, not fatal.
func ProvideDetailCache(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) service.DetailCache {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("redis not configured, pokemon detail cache disabled")
		return service.NoopDetailCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return service.NewRedisDetailCache(client, cfg.PokemonCacheTTL, logger)
}

func applyLogLevel(cfg *config.Config) {
	logger.ApplyLevel(cfg.LogLevel)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Invoke(applyLogLevel),
	// store
	fx.Provide(ProvideStore),
	// repos
	fx.Provide(ProvideTrainerRepository),
	fx.Provide(ProvideBattleRepository),
	fx.Provide(ProvidePokemonRepository),
	fx.Provide(ProvideUserRepository),
	// api client
	fx.Provide(api.NewPokeAPIClient),
	fx.Provide(ProvidePokemonSource),
	fx.Provide(ProvideDetailCache),
	// auth
	fx.Provide(auth.NewTokenService),
	fx.Provide(auth.NewFederatedVerifier),
	fx.Provide(auth.NewManager),
	// svc
	fx.Provide(service.NewTrainerService),
	fx.Provide(service.NewBattleService),
	fx.Provide(service.NewPokemonService),
	// server
	fx.Provide(server.NewPokeAppServer),
)
