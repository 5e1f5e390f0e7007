package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultTokenTTL is the lifetime of a session token
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	ErrInvalidTokenID = goerr.New("invalid token ID")
	ErrInvalidToken   = goerr.New("invalid token")
)

// TokenID identifies a session token and is sent as a cookie
type TokenID string

func (id TokenID) String() string { return string(id) }

// Validate checks the token ID format
func (id TokenID) Validate() error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(ErrInvalidTokenID, "token ID must be a UUID", goerr.V("token_id", string(id)))
	}
	return nil
}

// TokenSecret is the random secret paired with a TokenID
type TokenSecret string

func (s TokenSecret) String() string { return string(s) }

// Token is an authenticated admin session
type Token struct {
	ID        TokenID     `firestore:"id" json:"id"`
	Secret    TokenSecret `firestore:"secret" json:"-" masq:"secret"`
	Sub       string      `firestore:"sub" json:"sub"`
	Email     string      `firestore:"email" json:"email"`
	Name      string      `firestore:"name" json:"name"`
	ExpiresAt time.Time   `firestore:"expires_at" json:"expires_at"`
	CreatedAt time.Time   `firestore:"created_at" json:"created_at"`
}

// NewToken issues a new session token with DefaultTokenTTL
func NewToken(sub, email, name string) *Token {
	return NewTokenWithTTL(sub, email, name, DefaultTokenTTL)
}

// NewTokenWithTTL issues a new session token valid for ttl
func NewTokenWithTTL(sub, email, name string, ttl time.Duration) *Token {
	now := time.Now()
	return &Token{
		ID:        TokenID(uuid.NewString()),
		Secret:    newSecret(),
		Sub:       sub,
		Email:     email,
		Name:      name,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func newSecret() TokenSecret {
	buf := make([]byte, 32)
	// crypto/rand.Read never returns an error
	_, _ = rand.Read(buf)
	return TokenSecret(hex.EncodeToString(buf))
}

// Validate checks that all required fields are set
func (t *Token) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return err
	}
	if t.Secret == "" {
		return goerr.Wrap(ErrInvalidToken, "secret is empty")
	}
	if t.Sub == "" {
		return goerr.Wrap(ErrInvalidToken, "sub is empty")
	}
	if t.ExpiresAt.IsZero() {
		return goerr.Wrap(ErrInvalidToken, "expires_at is empty")
	}
	return nil
}

// IsExpired reports whether the token can no longer be used
func (t *Token) IsExpired() bool {
	return !time.Now().Before(t.ExpiresAt)
}
