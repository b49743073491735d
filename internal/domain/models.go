package domain

import (
	"time"
)

// Undecided is the battle outcome used until a winner is recorded.
const Undecided = "Indefinido"

type Trainer struct {
	Name   string
	Age    int
	Region string
}

type Battle struct {
	Participant1 string
	Participant2 string
	Outcome      string // participant name or Undecided
}

type PokemonSummary struct {
	Name     string
	ImageURL string
}

type PokemonDetail struct {
	Name   string
	Height int // decimetres
	Weight int // hectograms
	Types  []string
}

type Provider string

const (
	ProviderPassword  Provider = "password"
	ProviderAnonymous Provider = "anonymous"
	ProviderGoogle    Provider = "google"
)

type User struct {
	Email         string
	PasswordHash  string
	Provider      Provider
	Anonymous     bool
	ResetToken    string
	ResetIssuedAt time.Time
	CreatedAt     time.Time
}

// Session is the authenticated identity handed to every component that
// needs one. It is never stored globally.
type Session struct {
	Token     string
	UserID    string
	Email     string
	Provider  Provider
	Anonymous bool
	ExpiresAt time.Time
}

// Entry pairs a store-assigned document id with its decoded value.
type Entry[T any] struct {
	ID    string
	Value T
}
