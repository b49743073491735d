package server

import (
	"context"
	"errors"
	"strings"
	"pokeapp/internal/auth"
	"pokeapp/internal/domain"

	"connectrpc.com/connect"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Session, error)
}

var publicProcedures = map[string]bool{
	SignInProcedure:               true,
	SignInAnonymouslyProcedure:    true,
	SignInWithGoogleProcedure:     true,
	CreateAccountProcedure:        true,
	ResetPasswordProcedure:        true,
	ConfirmPasswordResetProcedure: true,
}

// NewAuthInterceptor resolves the bearer token into a session and stores it
// on the context. Account procedures are let through without one.
func NewAuthInterceptor(authenticator Authenticator) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if publicProcedures[req.Spec().Procedure] {
				return next(ctx, req)
			}

			token, ok := bearerToken(req.Header().Get("Authorization"))
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("missing bearer token"))
			}

			session, err := authenticator.Authenticate(ctx, token)
			if err != nil {
				return nil, toConnectError(err)
			}

			return next(auth.WithSession(ctx, session), req)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
