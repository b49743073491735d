package server

// Wire messages of the pokeapp.v1.PokeApp service. Field names follow the
// lowerCamelCase JSON mapping of the mobile client.

type Empty struct{}

type Session struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	Email     string `json:"email,omitempty"`
	Provider  string `json:"provider"`
	Anonymous bool   `json:"anonymous"`
	ExpiresAt string `json:"expiresAt"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInWithGoogleRequest struct {
	IDToken string `json:"idToken"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type ConfirmPasswordResetRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

type ListPokemonRequest struct {
	Limit   int  `json:"limit"`
	Refresh bool `json:"refresh"`
}

type Pokemon struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

type ListPokemonResponse struct {
	Pokemon []Pokemon `json:"pokemon"`
}

type GetPokemonDetailRequest struct {
	Name string `json:"name"`
}

type PokemonDetail struct {
	Name   string   `json:"name"`
	Height int      `json:"height"`
	Weight int      `json:"weight"`
	Types  []string `json:"types"`
}

type Trainer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Region string `json:"region"`
}

type ListTrainersResponse struct {
	Trainers []Trainer `json:"trainers"`
}

type Battle struct {
	ID           string `json:"id"`
	Participant1 string `json:"participant1"`
	Participant2 string `json:"participant2"`
	Outcome      string `json:"outcome"`
}

type ListBattlesResponse struct {
	Battles []Battle `json:"battles"`
}

type DeleteRequest struct {
	ID string `json:"id"`
}
