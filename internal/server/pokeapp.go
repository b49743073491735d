package server

import (
	"context"
	"errors"
	"time"
	"pokeapp/internal/auth"
	"pokeapp/internal/domain"
	"pokeapp/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

type PokeAppServer struct {
	auth       *auth.Manager
	pokemonSvc *service.PokemonService
	trainerSvc *service.TrainerService
	battleSvc  *service.BattleService
}

func NewPokeAppServer(authManager *auth.Manager, pokemonSvc *service.PokemonService, trainerSvc *service.TrainerService, battleSvc *service.BattleService) *PokeAppServer {
	return &PokeAppServer{auth: authManager, pokemonSvc: pokemonSvc, trainerSvc: trainerSvc, battleSvc: battleSvc}
}

func (s *PokeAppServer) SignIn(ctx context.Context, req *connect.Request[CredentialsRequest]) (*connect.Response[Session], error) {
	session, err := s.auth.SignIn(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toSession(session)), nil
}

func (s *PokeAppServer) SignInAnonymously(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Session], error) {
	session, err := s.auth.SignInAnonymously(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toSession(session)), nil
}

func (s *PokeAppServer) SignInWithGoogle(ctx context.Context, req *connect.Request[SignInWithGoogleRequest]) (*connect.Response[Session], error) {
	session, err := s.auth.SignInWithFederatedCredential(ctx, req.Msg.IDToken)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toSession(session)), nil
}

func (s *PokeAppServer) CreateAccount(ctx context.Context, req *connect.Request[CredentialsRequest]) (*connect.Response[Session], error) {
	session, err := s.auth.CreateAccount(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toSession(session)), nil
}

func (s *PokeAppServer) ResetPassword(ctx context.Context, req *connect.Request[ResetPasswordRequest]) (*connect.Response[Empty], error) {
	if err := s.auth.ResetPassword(ctx, req.Msg.Email); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *PokeAppServer) ConfirmPasswordReset(ctx context.Context, req *connect.Request[ConfirmPasswordResetRequest]) (*connect.Response[Empty], error) {
	if err := s.auth.ConfirmPasswordReset(ctx, req.Msg.ResetToken, req.Msg.NewPassword); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *PokeAppServer) SignOut(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Empty], error) {
	session, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	s.auth.SignOut(ctx, session.Token)
	return connect.NewResponse(&Empty{}), nil
}

func (s *PokeAppServer) ListPokemon(ctx context.Context, req *connect.Request[ListPokemonRequest]) (*connect.Response[ListPokemonResponse], error) {
	start := time.Now()
	defer func() {
		zerolog.Ctx(ctx).Debug().Dur("duration", time.Since(start)).Msg("ListPokemon done")
	}()

	pokemon, err := s.pokemonSvc.ListPokemon(ctx, req.Msg.Limit, req.Msg.Refresh)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &ListPokemonResponse{Pokemon: make([]Pokemon, 0, len(pokemon))}
	for _, p := range pokemon {
		resp.Pokemon = append(resp.Pokemon, Pokemon{Name: p.Name, ImageURL: p.ImageURL})
	}
	return connect.NewResponse(resp), nil
}

func (s *PokeAppServer) GetPokemonDetail(ctx context.Context, req *connect.Request[GetPokemonDetailRequest]) (*connect.Response[PokemonDetail], error) {
	detail, err := s.pokemonSvc.GetPokemonDetail(ctx, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&PokemonDetail{
		Name:   detail.Name,
		Height: detail.Height,
		Weight: detail.Weight,
		Types:  detail.Types,
	}), nil
}

func (s *PokeAppServer) ListTrainers(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListTrainersResponse], error) {
	entries, err := s.trainerSvc.List(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &ListTrainersResponse{Trainers: make([]Trainer, 0, len(entries))}
	for _, e := range entries {
		resp.Trainers = append(resp.Trainers, *toTrainer(e))
	}
	return connect.NewResponse(resp), nil
}

func (s *PokeAppServer) CreateTrainer(ctx context.Context, req *connect.Request[Trainer]) (*connect.Response[Trainer], error) {
	entry, err := s.trainerSvc.Create(ctx, fromTrainer(req.Msg))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toTrainer(entry)), nil
}

func (s *PokeAppServer) UpdateTrainer(ctx context.Context, req *connect.Request[Trainer]) (*connect.Response[Trainer], error) {
	if req.Msg.ID == "" {
		return nil, toConnectError(domain.NewValidationError("id", "is required"))
	}
	entry, err := s.trainerSvc.Update(ctx, req.Msg.ID, fromTrainer(req.Msg))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toTrainer(entry)), nil
}

func (s *PokeAppServer) DeleteTrainer(ctx context.Context, req *connect.Request[DeleteRequest]) (*connect.Response[Empty], error) {
	if req.Msg.ID == "" {
		return nil, toConnectError(domain.NewValidationError("id", "is required"))
	}
	if err := s.trainerSvc.Delete(ctx, req.Msg.ID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *PokeAppServer) ListBattles(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListBattlesResponse], error) {
	entries, err := s.battleSvc.List(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &ListBattlesResponse{Battles: make([]Battle, 0, len(entries))}
	for _, e := range entries {
		resp.Battles = append(resp.Battles, *toBattle(e))
	}
	return connect.NewResponse(resp), nil
}

func (s *PokeAppServer) CreateBattle(ctx context.Context, req *connect.Request[Battle]) (*connect.Response[Battle], error) {
	entry, err := s.battleSvc.Create(ctx, fromBattle(req.Msg))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toBattle(entry)), nil
}

func (s *PokeAppServer) UpdateBattle(ctx context.Context, req *connect.Request[Battle]) (*connect.Response[Battle], error) {
	if req.Msg.ID == "" {
		return nil, toConnectError(domain.NewValidationError("id", "is required"))
	}
	entry, err := s.battleSvc.Update(ctx, req.Msg.ID, fromBattle(req.Msg))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toBattle(entry)), nil
}

func (s *PokeAppServer) DeleteBattle(ctx context.Context, req *connect.Request[DeleteRequest]) (*connect.Response[Empty], error) {
	if req.Msg.ID == "" {
		return nil, toConnectError(domain.NewValidationError("id", "is required"))
	}
	if err := s.battleSvc.Delete(ctx, req.Msg.ID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func sessionFrom(ctx context.Context) (domain.Session, error) {
	session, ok := auth.SessionFrom(ctx)
	if !ok {
		return domain.Session{}, connect.NewError(connect.CodeUnauthenticated, errors.New("no session"))
	}
	return session, nil
}

func toSession(s domain.Session) *Session {
	return &Session{
		Token:     s.Token,
		UserID:    s.UserID,
		Email:     s.Email,
		Provider:  string(s.Provider),
		Anonymous: s.Anonymous,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func toTrainer(e domain.Entry[domain.Trainer]) *Trainer {
	return &Trainer{ID: e.ID, Name: e.Value.Name, Age: e.Value.Age, Region: e.Value.Region}
}

func fromTrainer(t *Trainer) domain.Trainer {
	return domain.Trainer{Name: t.Name, Age: t.Age, Region: t.Region}
}

func toBattle(e domain.Entry[domain.Battle]) *Battle {
	return &Battle{
		ID:           e.ID,
		Participant1: e.Value.Participant1,
		Participant2: e.Value.Participant2,
		Outcome:      e.Value.Outcome,
	}
}

func fromBattle(b *Battle) domain.Battle {
	return domain.Battle{Participant1: b.Participant1, Participant2: b.Participant2, Outcome: b.Outcome}
}
