package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"
	"pokeapp/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const detailKeyPrefix = "pokeapp:pokemon:detail:"

// DetailCache is best effort: failures are logged and read as misses.
type DetailCache interface {
	Get(ctx context.Context, name string) (*domain.PokemonDetail, bool)
	Set(ctx context.Context, detail *domain.PokemonDetail)
}

type RedisDetailCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedisDetailCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisDetailCache {
	return &RedisDetailCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("cache", "redis").Logger(),
	}
}

func (c *RedisDetailCache) Get(ctx context.Context, name string) (*domain.PokemonDetail, bool) {
	raw, err := c.client.Get(ctx, detailKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("name", name).Msg("failed to read cached detail")
		return nil, false
	}

	var detail domain.PokemonDetail
	if err := json.Unmarshal(raw, &detail); err != nil || len(detail.Types) == 0 {
		c.logger.Warn().Err(err).Str("name", name).Msg("discarding unreadable cached detail")
		return nil, false
	}
	return &detail, true
}

func (c *RedisDetailCache) Set(ctx context.Context, detail *domain.PokemonDetail) {
	raw, err := json.Marshal(detail)
	if err != nil {
		c.logger.Warn().Err(err).Str("name", detail.Name).Msg("failed to encode detail")
		return
	}
	if err := c.client.Set(ctx, detailKeyPrefix+detail.Name, raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("name", detail.Name).Msg("failed to cache detail")
	}
}

type NoopDetailCache struct{}

func (NoopDetailCache) Get(context.Context, string) (*domain.PokemonDetail, bool) { return nil, false }

func (NoopDetailCache) Set(context.Context, *domain.PokemonDetail) {}
