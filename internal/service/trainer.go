package service

import (
	"context"
	"strings"
	"pokeapp/internal/constants"
	"pokeapp/internal/domain"
	"pokeapp/internal/repository"

	"github.com/rs/zerolog"
)

type TrainerRepository = repository.CollectionRepository[domain.Trainer]

type TrainerService struct {
	repo   *TrainerRepository
	logger zerolog.Logger
}

func NewTrainerService(repo *TrainerRepository, logger zerolog.Logger) *TrainerService {
	return &TrainerService{repo: repo, logger: logger}
}

func (s *TrainerService) List(ctx context.Context) ([]domain.Entry[domain.Trainer], error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	items, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load trainers")
		return nil, err
	}

	s.logger.Info().Int("count", len(items)).Msg("trainers loaded")
	return items, nil
}

func (s *TrainerService) Create(ctx context.Context, t domain.Trainer) (domain.Entry[domain.Trainer], error) {
	t = normalizeTrainer(t)
	if err := validateTrainer(t); err != nil {
		return domain.Entry[domain.Trainer]{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	entry, err := s.repo.Create(ctx, t)
	if err != nil {
		return domain.Entry[domain.Trainer]{}, err
	}

	s.logger.Info().Str("id", entry.ID).Str("name", t.Name).Msg("trainer created")
	return entry, nil
}

func (s *TrainerService) Update(ctx context.Context, id string, t domain.Trainer) (domain.Entry[domain.Trainer], error) {
	t = normalizeTrainer(t)
	if err := validateTrainer(t); err != nil {
		return domain.Entry[domain.Trainer]{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	entry, err := s.repo.Update(ctx, id, t)
	if err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("failed to update trainer")
		return domain.Entry[domain.Trainer]{}, err
	}

	s.logger.Info().Str("id", id).Msg("trainer updated")
	return entry, nil
}

func (s *TrainerService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("id", id).Msg("trainer deleted")
	return nil
}

func normalizeTrainer(t domain.Trainer) domain.Trainer {
	t.Name = strings.TrimSpace(t.Name)
	t.Region = strings.TrimSpace(t.Region)
	return t
}

func validateTrainer(t domain.Trainer) error {
	if t.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if t.Age < 0 {
		return domain.NewValidationError("age", "must not be negative")
	}
	return nil
}
