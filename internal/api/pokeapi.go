package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"pokeapp/internal/config"
	"pokeapp/internal/constants"
	"pokeapp/internal/domain"

	"github.com/valyala/fasthttp"
)

type PokeAPIClient struct {
	baseURL           string
	spriteBaseURL     string
	spriteBySpeciesID bool
	client            *fasthttp.Client
}

func NewPokeAPIClient(cfg *config.Config) *PokeAPIClient {
	return &PokeAPIClient{
		baseURL:           cfg.PokeAPIBaseURL,
		spriteBaseURL:     cfg.SpriteBaseURL,
		spriteBySpeciesID: cfg.SpriteBySpeciesID,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// ListPokemon returns the first limit species. By default the Nth name is
// paired with sprite N, which only matches the species while the list is
// the unfiltered national dex from offset 0. SPRITE_BY_SPECIES_ID switches
// to the id embedded in each result URL.
func (c *PokeAPIClient) ListPokemon(ctx context.Context, limit int) ([]domain.PokemonSummary, error) {
	if limit <= 0 {
		return []domain.PokemonSummary{}, nil
	}

	u := fmt.Sprintf("%s/pokemon?limit=%d", c.baseURL, limit)
	resp, err := doRequest[PokemonListResponse](ctx, c, u)
	if err != nil {
		return nil, domain.NewTransportError("list pokemon", err)
	}

	out := make([]domain.PokemonSummary, 0, len(resp.Results))
	for i, r := range resp.Results {
		index := i + 1
		if c.spriteBySpeciesID {
			if id, ok := speciesID(r.URL); ok {
				index = id
			}
		}
		out = append(out, domain.PokemonSummary{
			Name:     r.Name,
			ImageURL: c.SpriteURL(index),
		})
	}
	return out, nil
}

func (c *PokeAPIClient) GetPokemonDetail(ctx context.Context, name string) (*domain.PokemonDetail, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	u := fmt.Sprintf("%s/pokemon/%s", c.baseURL, url.PathEscape(name))
	resp, err := doRequest[PokemonDetailResponse](ctx, c, u)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == fasthttp.StatusNotFound {
			return nil, &domain.NotFoundError{Collection: constants.PokemonCollection, ID: name}
		}
		return nil, domain.NewTransportError("get pokemon "+name, err)
	}

	types := make([]string, 0, len(resp.Types))
	for _, t := range resp.Types {
		if t.Type.Name != "" {
			types = append(types, t.Type.Name)
		}
	}
	if len(types) == 0 {
		return nil, domain.NewTransportError("get pokemon "+name, &domain.DecodeError{Field: "types", Reason: "empty"})
	}

	return &domain.PokemonDetail{
		Name:   name,
		Height: resp.Height,
		Weight: resp.Weight,
		Types:  types,
	}, nil
}

func (c *PokeAPIClient) SpriteURL(index int) string {
	return fmt.Sprintf("%s/%d.png", c.spriteBaseURL, index)
}

// https://pokeapi.co/api/v2/pokemon/25/ -> 25
func speciesID(resourceURL string) (int, bool) {
	parts := strings.Split(strings.TrimRight(resourceURL, "/"), "/")
	if len(parts) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// StatusError is a non-200 answer from the API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d", e.Code)
}

func doRequest[T any](ctx context.Context, client *PokeAPIClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode()}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type PokemonListResponse struct {
	Count   int              `json:"count"`
	Results []NamedAPIResult `json:"results"`
}

type NamedAPIResult struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type PokemonDetailResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Slot int            `json:"slot"`
		Type NamedAPIResult `json:"type"`
	} `json:"types"`
}
