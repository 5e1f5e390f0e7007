package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
	"golang.org/x/crypto/bcrypt"
)

// AuthUseCaseInterface is the login gate used by the HTTP controller
type AuthUseCaseInterface interface {
	Login(ctx context.Context, email, password string) (*auth.Token, error)
	ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error)
	Logout(ctx context.Context, tokenID auth.TokenID) error
	IsNoAuthn() bool
}

// Admin is a reviewer allowed to sign in. PasswordHash is a bcrypt hash.
type Admin struct {
	Email        string
	Name         string
	PasswordHash string `masq:"secret"`
}

// dummyHash is compared against when the email is unknown so both paths cost one bcrypt check
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z1V3bZ8b4sGgqSx1bO7kqK8a")

type AuthUseCase struct {
	repo     interfaces.Repository
	admins   map[string]Admin
	tokenTTL time.Duration
	cache    *authCache
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithTokenTTL sets the lifetime of issued session tokens
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		uc.tokenTTL = ttl
	}
}

// WithAuthCacheTTL sets how long validated tokens are served from memory
func WithAuthCacheTTL(ttl time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		uc.cache = newAuthCache(ttl)
	}
}

func NewAuthUseCase(repo interfaces.Repository, admins []Admin, options ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		repo:     repo,
		admins:   make(map[string]Admin, len(admins)),
		tokenTTL: auth.DefaultTokenTTL,
		cache:    newAuthCache(defaultAuthCacheTTL),
	}
	for _, a := range admins {
		uc.admins[normalizeEmail(a.Email)] = a
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns the bcrypt hash to put in the admin configuration
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", goerr.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", goerr.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// Login checks the admin credentials and issues a session token
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*auth.Token, error) {
	admin, ok := uc.admins[normalizeEmail(email)]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, goerr.Wrap(ErrInvalidCredentials, "unknown admin", goerr.V("email", email))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, goerr.Wrap(ErrInvalidCredentials, "password mismatch", goerr.V("email", email))
	}

	name := admin.Name
	if name == "" {
		name = admin.Email
	}
	token := auth.NewTokenWithTTL(admin.Email, admin.Email, name, uc.tokenTTL)
	if err := uc.repo.PutToken(ctx, token); err != nil {
		return nil, goerr.Wrap(err, "failed to store token", goerr.V("token", token))
	}

	logging.From(ctx).Info("admin signed in", "email", admin.Email)
	return token, nil
}

// ValidateToken validates the token and returns user info
func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	return uc.validateTokenWithCache(ctx, tokenID, tokenSecret)
}

// Logout deletes the token. Unknown tokens are ignored.
func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	uc.cache.remove(tokenID)
	if err := uc.repo.DeleteToken(ctx, tokenID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(err, "failed to delete token", goerr.V("token_id", tokenID))
	}
	return nil
}
