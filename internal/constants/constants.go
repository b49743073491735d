package constants

import "time"

const (
	TrainersCollection = "entrenadores"
	BattlesCollection  = "batallas"
	PokemonCollection  = "pokemon"
	UsersCollection    = "usuarios"
)

const (
	UnknownName   = "Desconocido"
	UnknownRegion = "Desconocida"
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	WarmupTimeout      = 15 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultPokemonPageSize = 10
	MaxPokemonPageSize     = 151
	MinPasswordLength      = 6
	ResetTokenLength       = 32
	ResetTokenTTL          = 1 * time.Hour
)
