package service

import (
	"context"
	"strings"
	"pokeapp/internal/constants"
	"pokeapp/internal/domain"
	"pokeapp/internal/repository"

	"github.com/rs/zerolog"
)

type BattleRepository = repository.CollectionRepository[domain.Battle]

type BattleService struct {
	repo   *BattleRepository
	logger zerolog.Logger
}

func NewBattleService(repo *BattleRepository, logger zerolog.Logger) *BattleService {
	return &BattleService{repo: repo, logger: logger}
}

func (s *BattleService) List(ctx context.Context) ([]domain.Entry[domain.Battle], error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	items, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load battles")
		return nil, err
	}

	s.logger.Info().Int("count", len(items)).Msg("battles loaded")
	return items, nil
}

func (s *BattleService) Create(ctx context.Context, b domain.Battle) (domain.Entry[domain.Battle], error) {
	b = normalizeBattle(b)
	if err := validateBattle(b); err != nil {
		return domain.Entry[domain.Battle]{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	entry, err := s.repo.Create(ctx, b)
	if err != nil {
		return domain.Entry[domain.Battle]{}, err
	}

	s.logger.Info().
		Str("id", entry.ID).
		Str("participant1", b.Participant1).
		Str("participant2", b.Participant2).
		Str("outcome", b.Outcome).
		Msg("battle created")
	return entry, nil
}

func (s *BattleService) Update(ctx context.Context, id string, b domain.Battle) (domain.Entry[domain.Battle], error) {
	b = normalizeBattle(b)
	if err := validateBattle(b); err != nil {
		return domain.Entry[domain.Battle]{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	entry, err := s.repo.Update(ctx, id, b)
	if err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("failed to update battle")
		return domain.Entry[domain.Battle]{}, err
	}

	s.logger.Info().Str("id", id).Str("outcome", b.Outcome).Msg("battle updated")
	return entry, nil
}

func (s *BattleService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("id", id).Msg("battle deleted")
	return nil
}

// An empty outcome means the battle has not been decided yet.
func normalizeBattle(b domain.Battle) domain.Battle {
	b.Participant1 = strings.TrimSpace(b.Participant1)
	b.Participant2 = strings.TrimSpace(b.Participant2)
	b.Outcome = strings.TrimSpace(b.Outcome)
	if b.Outcome == "" {
		b.Outcome = domain.Undecided
	}
	return b
}

func validateBattle(b domain.Battle) error {
	if b.Participant1 == "" {
		return domain.NewValidationError("participant1", "is required")
	}
	if b.Participant2 == "" {
		return domain.NewValidationError("participant2", "is required")
	}
	switch b.Outcome {
	case b.Participant1, b.Participant2, domain.Undecided:
		return nil
	default:
		return domain.NewValidationError("outcome", "must be a participant or "+domain.Undecided)
	}
}
