package auth

import (
	"errors"
	"fmt"
	"time"

	"pokeapp/internal/config"
	"pokeapp/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")
)

type Claims struct {
	Email     string          `json:"email,omitempty"`
	Provider  domain.Provider `json:"provider"`
	Anonymous bool            `json:"anonymous,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 session tokens.
type TokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenService(cfg *config.Config) (*TokenService, error) {
	if cfg.JWTSecretKey == "" {
		return nil, errors.New("jwt secret key cannot be empty")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("session TTL must be positive")
	}

	return &TokenService{
		secretKey: []byte(cfg.JWTSecretKey),
		issuer:    cfg.JWTIssuer,
		ttl:       cfg.SessionTTL,
		now:       time.Now,
	}, nil
}

func (s *TokenService) Issue(userID string, user domain.User) (domain.Session, error) {
	jti, err := gonanoid.New()
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to generate token id: %w", err)
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := &Claims{
		Email:     user.Email,
		Provider:  user.Provider,
		Anonymous: user.Anonymous,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return domain.Session{
		Token:     signed,
		UserID:    userID,
		Email:     user.Email,
		Provider:  user.Provider,
		Anonymous: user.Anonymous,
		ExpiresAt: expires.Truncate(time.Second),
	}, nil
}

func (s *TokenService) Validate(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (c *Claims) Session(token string) domain.Session {
	s := domain.Session{
		Token:     token,
		UserID:    c.Subject,
		Email:     c.Email,
		Provider:  c.Provider,
		Anonymous: c.Anonymous,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}
