package schema

import (
	"time"

	"pokeapp/internal/constants"
	"pokeapp/internal/docstore"
	"pokeapp/internal/domain"
)

const (
	fieldTrainerName   = "nombre"
	fieldTrainerAge    = "edad"
	fieldTrainerRegion = "region"

	fieldBattleParticipant1 = "entrenador1"
	fieldBattleParticipant2 = "entrenador2"
	fieldBattleOutcome      = "ganador"

	fieldPokemonName  = "name"
	fieldPokemonImage = "imageUrl"

	fieldUserEmail      = "email"
	fieldUserPassword   = "passwordHash"
	fieldUserProvider   = "provider"
	fieldUserAnonymous  = "anonymous"
	fieldUserResetToken = "resetToken"
	fieldUserResetAt    = "resetIssuedAt"
	fieldUserCreatedAt  = "createdAt"
)

type TrainerSchema struct{}

func (TrainerSchema) Collection() string { return constants.TrainersCollection }

func (TrainerSchema) Encode(t domain.Trainer) docstore.Fields {
	return docstore.Fields{
		fieldTrainerName:   t.Name,
		fieldTrainerAge:    int64(t.Age),
		fieldTrainerRegion: t.Region,
	}
}

func (TrainerSchema) Decode(f docstore.Fields) Decoded[domain.Trainer] {
	r := newReader(f)
	return decoded(domain.Trainer{
		Name:   r.String(fieldTrainerName, constants.UnknownName),
		Age:    r.NonNegativeInt(fieldTrainerAge, 0),
		Region: r.String(fieldTrainerRegion, constants.UnknownRegion),
	}, r)
}

type BattleSchema struct{}

func (BattleSchema) Collection() string { return constants.BattlesCollection }

func (BattleSchema) Encode(b domain.Battle) docstore.Fields {
	return docstore.Fields{
		fieldBattleParticipant1: b.Participant1,
		fieldBattleParticipant2: b.Participant2,
		fieldBattleOutcome:      b.Outcome,
	}
}

func (BattleSchema) Decode(f docstore.Fields) Decoded[domain.Battle] {
	r := newReader(f)
	return decoded(domain.Battle{
		Participant1: r.String(fieldBattleParticipant1, constants.UnknownName),
		Participant2: r.String(fieldBattleParticipant2, constants.UnknownName),
		Outcome:      r.String(fieldBattleOutcome, domain.Undecided),
	}, r)
}

type PokemonSchema struct{}

func (PokemonSchema) Collection() string { return constants.PokemonCollection }

func (PokemonSchema) Encode(p domain.PokemonSummary) docstore.Fields {
	return docstore.Fields{
		fieldPokemonName:  p.Name,
		fieldPokemonImage: p.ImageURL,
	}
}

func (PokemonSchema) Decode(f docstore.Fields) Decoded[domain.PokemonSummary] {
	r := newReader(f)
	return decoded(domain.PokemonSummary{
		Name:     r.String(fieldPokemonName, constants.UnknownName),
		ImageURL: r.String(fieldPokemonImage, ""),
	}, r)
}

type UserSchema struct{}

func (UserSchema) Collection() string { return constants.UsersCollection }

func (UserSchema) Encode(u domain.User) docstore.Fields {
	return docstore.Fields{
		fieldUserEmail:      u.Email,
		fieldUserPassword:   u.PasswordHash,
		fieldUserProvider:   string(u.Provider),
		fieldUserAnonymous:  u.Anonymous,
		fieldUserResetToken: u.ResetToken,
		fieldUserResetAt:    formatTime(u.ResetIssuedAt),
		fieldUserCreatedAt:  formatTime(u.CreatedAt),
	}
}

// zero times are stored as ""
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func (UserSchema) Decode(f docstore.Fields) Decoded[domain.User] {
	r := newReader(f)
	return decoded(domain.User{
		Email:         r.String(fieldUserEmail, ""),
		PasswordHash:  r.String(fieldUserPassword, ""),
		Provider:      domain.Provider(r.String(fieldUserProvider, string(domain.ProviderPassword))),
		Anonymous:     r.Bool(fieldUserAnonymous, false),
		ResetToken:    r.String(fieldUserResetToken, ""),
		ResetIssuedAt: r.Time(fieldUserResetAt),
		CreatedAt:     r.Time(fieldUserCreatedAt),
	}, r)
}
