package server

import (
	"net/http"

	"connectrpc.com/connect"
)

const PokeAppName = "pokeapp.v1.PokeApp"

const (
	SignInProcedure               = "/pokeapp.v1.PokeApp/SignIn"
	SignInAnonymouslyProcedure    = "/pokeapp.v1.PokeApp/SignInAnonymously"
	SignInWithGoogleProcedure     = "/pokeapp.v1.PokeApp/SignInWithGoogle"
	CreateAccountProcedure        = "/pokeapp.v1.PokeApp/CreateAccount"
	ResetPasswordProcedure        = "/pokeapp.v1.PokeApp/ResetPassword"
	ConfirmPasswordResetProcedure = "/pokeapp.v1.PokeApp/ConfirmPasswordReset"
	SignOutProcedure              = "/pokeapp.v1.PokeApp/SignOut"
	ListPokemonProcedure          = "/pokeapp.v1.PokeApp/ListPokemon"
	GetPokemonDetailProcedure     = "/pokeapp.v1.PokeApp/GetPokemonDetail"
	ListTrainersProcedure         = "/pokeapp.v1.PokeApp/ListTrainers"
	CreateTrainerProcedure        = "/pokeapp.v1.PokeApp/CreateTrainer"
	UpdateTrainerProcedure        = "/pokeapp.v1.PokeApp/UpdateTrainer"
	DeleteTrainerProcedure        = "/pokeapp.v1.PokeApp/DeleteTrainer"
	ListBattlesProcedure          = "/pokeapp.v1.PokeApp/ListBattles"
	CreateBattleProcedure         = "/pokeapp.v1.PokeApp/CreateBattle"
	UpdateBattleProcedure         = "/pokeapp.v1.PokeApp/UpdateBattle"
	DeleteBattleProcedure         = "/pokeapp.v1.PokeApp/DeleteBattle"
)

// NewPokeAppHandler builds the HTTP handler serving every PokeApp procedure
// and returns the path prefix to mount it on.
func NewPokeAppHandler(svc *PokeAppServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(SignInProcedure, connect.NewUnaryHandler(SignInProcedure, svc.SignIn, opts...))
	mux.Handle(SignInAnonymouslyProcedure, connect.NewUnaryHandler(SignInAnonymouslyProcedure, svc.SignInAnonymously, opts...))
	mux.Handle(SignInWithGoogleProcedure, connect.NewUnaryHandler(SignInWithGoogleProcedure, svc.SignInWithGoogle, opts...))
	mux.Handle(CreateAccountProcedure, connect.NewUnaryHandler(CreateAccountProcedure, svc.CreateAccount, opts...))
	mux.Handle(ResetPasswordProcedure, connect.NewUnaryHandler(ResetPasswordProcedure, svc.ResetPassword, opts...))
	mux.Handle(ConfirmPasswordResetProcedure, connect.NewUnaryHandler(ConfirmPasswordResetProcedure, svc.ConfirmPasswordReset, opts...))
	mux.Handle(SignOutProcedure, connect.NewUnaryHandler(SignOutProcedure, svc.SignOut, opts...))
	mux.Handle(ListPokemonProcedure, connect.NewUnaryHandler(ListPokemonProcedure, svc.ListPokemon, opts...))
	mux.Handle(GetPokemonDetailProcedure, connect.NewUnaryHandler(GetPokemonDetailProcedure, svc.GetPokemonDetail, opts...))
	mux.Handle(ListTrainersProcedure, connect.NewUnaryHandler(ListTrainersProcedure, svc.ListTrainers, opts...))
	mux.Handle(CreateTrainerProcedure, connect.NewUnaryHandler(CreateTrainerProcedure, svc.CreateTrainer, opts...))
	mux.Handle(UpdateTrainerProcedure, connect.NewUnaryHandler(UpdateTrainerProcedure, svc.UpdateTrainer, opts...))
	mux.Handle(DeleteTrainerProcedure, connect.NewUnaryHandler(DeleteTrainerProcedure, svc.DeleteTrainer, opts...))
	mux.Handle(ListBattlesProcedure, connect.NewUnaryHandler(ListBattlesProcedure, svc.ListBattles, opts...))
	mux.Handle(CreateBattleProcedure, connect.NewUnaryHandler(CreateBattleProcedure, svc.CreateBattle, opts...))
	mux.Handle(UpdateBattleProcedure, connect.NewUnaryHandler(UpdateBattleProcedure, svc.UpdateBattle, opts...))
	mux.Handle(DeleteBattleProcedure, connect.NewUnaryHandler(DeleteBattleProcedure, svc.DeleteBattle, opts...))

	return "/" + PokeAppName + "/", mux
}

// ClientOptions are the options a Go client needs to talk to the handler.
func ClientOptions() []connect.ClientOption {
	return []connect.ClientOption{connect.WithCodec(jsonCodec{})}
}
