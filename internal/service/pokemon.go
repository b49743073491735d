package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"pokeapp/internal/config"
	"pokeapp/internal/constants"
	"pokeapp/internal/domain"
	"pokeapp/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type PokemonSource interface {
	ListPokemon(ctx context.Context, limit int) ([]domain.PokemonSummary, error)
	GetPokemonDetail(ctx context.Context, name string) (*domain.PokemonDetail, error)
}

type PokemonRepository = repository.CollectionRepository[domain.PokemonSummary]

// PokemonService serves the species list from the cached page in the
// pokemon collection and only goes to the source when the page is short.
type PokemonService struct {
	source   PokemonSource
	page     *PokemonRepository
	details  DetailCache
	pageSize int
	logger   zerolog.Logger

	fill   singleflight.Group
	fillMu sync.Mutex
}

func NewPokemonService(source PokemonSource, page *PokemonRepository, details DetailCache, cfg *config.Config, logger zerolog.Logger) *PokemonService {
	return &PokemonService{
		source:   source,
		page:     page,
		details:  details,
		pageSize: cfg.PokemonPageSize,
		logger:   logger,
	}
}

func (s *PokemonService) ListPokemon(ctx context.Context, limit int, refresh bool) ([]domain.PokemonSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if limit <= 0 {
		limit = s.pageSize
	}
	limit = min(limit, constants.MaxPokemonPageSize)

	s.logger.Info().Int("limit", limit).Bool("refresh", refresh).Msg("listing pokemon")

	if !refresh {
		if cached, ok := s.cachedPage(ctx, limit); ok {
			s.logger.Info().Int("count", len(cached)).Msg("returning cached pokemon page")
			return cached, nil
		}
	}

	key := fmt.Sprintf("%d:%t", limit, refresh)
	v, err, shared := s.fill.Do(key, func() (any, error) {
		return s.fillPage(ctx, limit, refresh)
	})
	if err != nil {
		return nil, err
	}

	out := slices.Clone(v.([]domain.PokemonSummary))
	s.logger.Info().Int("count", len(out)).Bool("shared", shared).Msg("pokemon fetched successfully")
	return out, nil
}

// cachedPage returns the first limit distinct species of the stored page.
func (s *PokemonService) cachedPage(ctx context.Context, limit int) ([]domain.PokemonSummary, bool) {
	entries, err := s.page.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("pokemon page cache unavailable")
		return nil, false
	}

	return pageOf(entries, limit)
}

// fillPage fetches from the source and stores the page. Fills are
// serialised so concurrent callers cannot insert the same species twice.
func (s *PokemonService) fillPage(ctx context.Context, limit int, refresh bool) ([]domain.PokemonSummary, error) {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()

	entries, loadErr := s.page.Load(ctx)
	if loadErr != nil {
		s.logger.Warn().Err(loadErr).Msg("pokemon page cache unavailable")
	} else if !refresh {
		// filled by the caller we waited on
		if out, ok := pageOf(entries, limit); ok {
			return out, nil
		}
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	fetched, err := s.source.ListPokemon(apiCtx, limit)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Msg("failed to fetch pokemon list")
		return nil, err
	}

	// without a fresh snapshot creates could duplicate stored species
	if loadErr == nil {
		s.storePage(ctx, entries, fetched)
	}
	return fetched, nil
}

// storePage drops duplicate species, adds the ones the page lacks and
// rewrites entries whose sprite changed. Failures only cost a cache miss
// next time.
func (s *PokemonService) storePage(ctx context.Context, entries []domain.Entry[domain.PokemonSummary], fetched []domain.PokemonSummary) {
	byName := make(map[string]domain.Entry[domain.PokemonSummary], len(entries))
	for _, e := range entries {
		if _, ok := byName[e.Value.Name]; ok {
			if err := s.page.Delete(ctx, e.ID); err != nil {
				s.logger.Warn().Err(err).Str("id", e.ID).Str("name", e.Value.Name).Msg("failed to drop duplicate pokemon")
			}
			continue
		}
		byName[e.Value.Name] = e
	}

	for _, p := range fetched {
		existing, ok := byName[p.Name]
		switch {
		case !ok:
			entry, err := s.page.Create(ctx, p)
			if err != nil {
				s.logger.Warn().Err(err).Str("name", p.Name).Msg("failed to cache pokemon")
				return
			}
			byName[p.Name] = entry
		case existing.Value != p:
			if _, err := s.page.Update(ctx, existing.ID, p); err != nil {
				s.logger.Warn().Err(err).Str("name", p.Name).Msg("failed to refresh cached pokemon")
			}
		}
	}
}

// pageOf returns the first limit distinct species, if there are that many.
func pageOf(entries []domain.Entry[domain.PokemonSummary], limit int) ([]domain.PokemonSummary, bool) {
	unique := uniqueByName(entries)
	if len(unique) < limit {
		return nil, false
	}

	out := make([]domain.PokemonSummary, limit)
	for i := range out {
		out[i] = unique[i].Value
	}
	return out, true
}

func uniqueByName(entries []domain.Entry[domain.PokemonSummary]) []domain.Entry[domain.PokemonSummary] {
	seen := make(map[string]struct{}, len(entries))
	out := make([]domain.Entry[domain.PokemonSummary], 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Value.Name]; dup {
			continue
		}
		seen[e.Value.Name] = struct{}{}
		out = append(out, e)
	}
	return out
}

func (s *PokemonService) GetPokemonDetail(ctx context.Context, name string) (*domain.PokemonDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	if detail, ok := s.details.Get(ctx, name); ok {
		s.logger.Debug().Str("name", name).Msg("returning cached pokemon detail")
		return detail, nil
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	detail, err := s.source.GetPokemonDetail(apiCtx, name)
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to fetch pokemon detail")
		return nil, err
	}

	s.details.Set(ctx, detail)
	return detail, nil
}
