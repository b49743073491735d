package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"sqlite"`
	DBPath        string `env:"DB_PATH" envDefault:"pokeapp.db"`
	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"pokeapp"`

	// Empty disables the detail cache.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	PokeAPIBaseURL    string        `env:"POKEAPI_BASE_URL" envDefault:"https://pokeapi.co/api/v2"`
	SpriteBaseURL     string        `env:"SPRITE_BASE_URL" envDefault:"https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon"`
	SpriteBySpeciesID bool          `env:"SPRITE_BY_SPECIES_ID" envDefault:"false"`
	PokemonPageSize   int           `env:"POKEMON_PAGE_SIZE" envDefault:"10"`
	PokemonCacheTTL   time.Duration `env:"POKEMON_CACHE_TTL" envDefault:"1h"`

	JWTSecretKey       string        `env:"JWT_SECRET_KEY,required"`
	JWTIssuer          string        `env:"JWT_ISSUER" envDefault:"pokeapp"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	FederatedSecretKey string        `env:"FEDERATED_SECRET_KEY"`
	FederatedIssuer    string        `env:"FEDERATED_ISSUER" envDefault:"accounts.google.com"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("store_driver", cfg.StoreDriver).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("redis_cache", cfg.RedisAddr != "").
		Bool("sprite_by_species_id", cfg.SpriteBySpeciesID).
		Dur("session_ttl", cfg.SessionTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreSQLite, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.PokemonPageSize <= 0 {
		return fmt.Errorf("POKEMON_PAGE_SIZE must be positive")
	}

	c.PokeAPIBaseURL = strings.TrimRight(c.PokeAPIBaseURL, "/")
	c.SpriteBaseURL = strings.TrimRight(c.SpriteBaseURL, "/")
	return nil
}

var Module = fx.Provide(Load)
