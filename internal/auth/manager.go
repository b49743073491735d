package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"pokeapp/internal/constants"
	"pokeapp/internal/domain"
	"pokeapp/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgMissingFields   = "email and password are required"
	msgInvalidEmail    = "email address is badly formatted"
	msgWeakPassword    = "password must be at least 6 characters"
	msgEmailInUse      = "email address is already in use"
	msgBadCredentials  = "invalid email or password"
	msgUnknownEmail    = "no account is registered with that email"
	msgBadResetToken   = "password reset link is invalid or has already been used"
	msgResetExpired    = "password reset link has expired"
	msgInvalidSession  = "session is invalid or has expired"
	msgFederatedFailed = "federated sign-in failed"
	msgStoreFailure    = "authentication service is unavailable"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type UserRepository = repository.CollectionRepository[domain.User]

// Manager is the session capability. Accounts live in the users collection;
// each call reloads it so several instances can share one store.
type Manager struct {
	users     *UserRepository
	tokens    *TokenService
	federated FederatedVerifier
	logger    zerolog.Logger
	now       func() time.Time

	// serialises the read-check-write of account mutations
	mu sync.Mutex

	revokedMu sync.Mutex
	revoked   map[string]time.Time // token id -> expiry
}

func NewManager(users *UserRepository, tokens *TokenService, federated FederatedVerifier, logger zerolog.Logger) *Manager {
	return &Manager{
		users:     users,
		tokens:    tokens,
		federated: federated,
		logger:    logger.With().Str("component", "auth").Logger(),
		now:       time.Now,
		revoked:   make(map[string]time.Time),
	}
}

func (m *Manager) CreateAccount(ctx context.Context, email, password string) (domain.Session, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return domain.Session{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.reload(ctx); err != nil {
		return domain.Session{}, err
	}
	if _, ok := m.findByEmail(email); ok {
		return domain.Session{}, domain.NewAuthError(msgEmailInUse)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to hash password")
		return domain.Session{}, domain.NewAuthError(msgStoreFailure)
	}

	entry, err := m.users.Create(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Provider:     domain.ProviderPassword,
		CreatedAt:    m.now().UTC(),
	})
	if err != nil {
		return domain.Session{}, err
	}

	m.logger.Info().Str("user_id", entry.ID).Msg("account created")
	return m.tokens.Issue(entry.ID, entry.Value)
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.Session{}, domain.NewAuthError(msgMissingFields)
	}

	if err := m.reload(ctx); err != nil {
		return domain.Session{}, err
	}

	entry, ok := m.findByEmail(email)
	if !ok || entry.Value.PasswordHash == "" {
		return domain.Session{}, domain.NewAuthError(msgBadCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(entry.Value.PasswordHash), []byte(password)); err != nil {
		m.logger.Debug().Str("user_id", entry.ID).Msg("password mismatch")
		return domain.Session{}, domain.NewAuthError(msgBadCredentials)
	}

	m.logger.Info().Str("user_id", entry.ID).Msg("signed in with password")
	return m.tokens.Issue(entry.ID, entry.Value)
}

func (m *Manager) SignInAnonymously(ctx context.Context) (domain.Session, error) {
	entry, err := m.users.Create(ctx, domain.User{
		Provider:  domain.ProviderAnonymous,
		Anonymous: true,
		CreatedAt: m.now().UTC(),
	})
	if err != nil {
		return domain.Session{}, err
	}

	m.logger.Info().Str("user_id", entry.ID).Msg("signed in anonymously")
	return m.tokens.Issue(entry.ID, entry.Value)
}

// SignInWithFederatedCredential signs in the account holding the verified
// email, creating one on first use.
func (m *Manager) SignInWithFederatedCredential(ctx context.Context, credential string) (domain.Session, error) {
	if credential == "" {
		return domain.Session{}, domain.NewAuthError(msgFederatedFailed)
	}

	identity, err := m.federated.Verify(ctx, credential)
	if err != nil {
		m.logger.Warn().Err(err).Msg("federated credential rejected")
		if errors.Is(err, ErrFederatedDisabled) {
			return domain.Session{}, domain.NewAuthError(err.Error())
		}
		return domain.Session{}, domain.NewAuthError(msgFederatedFailed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.reload(ctx); err != nil {
		return domain.Session{}, err
	}

	entry, ok := m.findByEmail(identity.Email)
	if !ok {
		entry, err = m.users.Create(ctx, domain.User{
			Email:     identity.Email,
			Provider:  domain.ProviderGoogle,
			CreatedAt: m.now().UTC(),
		})
		if err != nil {
			return domain.Session{}, err
		}
		m.logger.Info().Str("user_id", entry.ID).Msg("account created from federated credential")
	}

	user := entry.Value
	user.Provider = domain.ProviderGoogle
	m.logger.Info().Str("user_id", entry.ID).Msg("signed in with federated credential")
	return m.tokens.Issue(entry.ID, user)
}

// ResetPassword stores a one-time reset token on the account. Delivering
// it to the user is left to the mail integration; only its issue is logged.
func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" || !emailRegex.MatchString(email) {
		return domain.NewAuthError(msgInvalidEmail)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.reload(ctx); err != nil {
		return err
	}

	entry, ok := m.findByEmail(email)
	if !ok {
		return domain.NewAuthError(msgUnknownEmail)
	}

	token, err := gonanoid.New(constants.ResetTokenLength)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to generate reset token")
		return domain.NewAuthError(msgStoreFailure)
	}

	user := entry.Value
	user.ResetToken = token
	user.ResetIssuedAt = m.now().UTC()
	if _, err := m.users.Update(ctx, entry.ID, user); err != nil {
		return err
	}

	m.logger.Info().Str("user_id", entry.ID).Msg("password reset requested")
	return nil
}

func (m *Manager) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return domain.NewAuthError(msgBadResetToken)
	}
	if len(newPassword) < constants.MinPasswordLength {
		return domain.NewAuthError(msgWeakPassword)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.reload(ctx); err != nil {
		return err
	}

	found, ok := m.findByResetToken(resetToken)
	if !ok {
		return domain.NewAuthError(msgBadResetToken)
	}
	if m.now().Sub(found.Value.ResetIssuedAt) > constants.ResetTokenTTL {
		m.logger.Info().Str("user_id", found.ID).Msg("expired password reset token used")
		return domain.NewAuthError(msgResetExpired)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewAuthError(msgStoreFailure)
	}

	user := found.Value
	user.PasswordHash = string(hash)
	user.ResetToken = ""
	user.ResetIssuedAt = time.Time{}
	if user.Provider == domain.ProviderAnonymous || user.Provider == "" {
		user.Provider = domain.ProviderPassword
	}
	if _, err := m.users.Update(ctx, found.ID, user); err != nil {
		return err
	}

	m.logger.Info().Str("user_id", found.ID).Msg("password reset completed")
	return nil
}

// SignOut revokes the session token. Unknown or malformed tokens are ignored.
func (m *Manager) SignOut(ctx context.Context, token string) {
	claims, err := m.tokens.Validate(token)
	if err != nil {
		return
	}

	m.revokedMu.Lock()
	defer m.revokedMu.Unlock()

	now := time.Now()
	for id, exp := range m.revoked {
		if exp.Before(now) {
			delete(m.revoked, id)
		}
	}
	m.revoked[claims.ID] = claims.ExpiresAt.Time

	m.logger.Info().Str("user_id", claims.Subject).Msg("signed out")
}

func (m *Manager) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	claims, err := m.tokens.Validate(token)
	if err != nil {
		return domain.Session{}, domain.NewAuthError(msgInvalidSession)
	}

	m.revokedMu.Lock()
	_, revoked := m.revoked[claims.ID]
	m.revokedMu.Unlock()
	if revoked {
		return domain.Session{}, domain.NewAuthError(msgInvalidSession)
	}

	return claims.Session(token), nil
}

func (m *Manager) reload(ctx context.Context) error {
	if _, err := m.users.Load(ctx); err != nil {
		m.logger.Error().Err(err).Msg("failed to load users")
		return err
	}
	return nil
}

func (m *Manager) findByEmail(email string) (domain.Entry[domain.User], bool) {
	if email == "" {
		return domain.Entry[domain.User]{}, false
	}
	for _, e := range m.users.Items() {
		if e.Value.Email == email {
			return e, true
		}
	}
	return domain.Entry[domain.User]{}, false
}

// findByResetToken compares against every stored token in constant time.
func (m *Manager) findByResetToken(token string) (domain.Entry[domain.User], bool) {
	var found domain.Entry[domain.User]
	ok := false
	for _, e := range m.users.Items() {
		if e.Value.ResetToken == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(e.Value.ResetToken), []byte(token)) == 1 && !ok {
			found, ok = e, true
		}
	}
	return found, ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return domain.NewAuthError(msgMissingFields)
	}
	if !emailRegex.MatchString(email) {
		return domain.NewAuthError(msgInvalidEmail)
	}
	if len(password) < constants.MinPasswordLength {
		return domain.NewAuthError(msgWeakPassword)
	}
	return nil
}
