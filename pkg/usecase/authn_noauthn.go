package usecase

import (
	"context"
	"strings"

	"github.com/secmon-lab/shelfcheck/pkg/domain/model/auth"
)

// NoAuthnUseCase is the login gate of --no-auth mode. Every request is signed in as one
// fixed reviewer; an empty email means the anonymous user.
type NoAuthnUseCase struct {
	session *auth.Token
}

// NewNoAuthnUseCase creates a NoAuthnUseCase. The reviewer name defaults to the local part of the email.
func NewNoAuthnUseCase(email, name string) *NoAuthnUseCase {
	email = strings.TrimSpace(email)
	if email == "" {
		return &NoAuthnUseCase{session: auth.NewAnonymousUser()}
	}
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return &NoAuthnUseCase{session: auth.NewToken(email, email, name)}
}

func (uc *NoAuthnUseCase) Login(ctx context.Context, email, password string) (*auth.Token, error) {
	return uc.copySession(), nil
}

func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	return uc.copySession(), nil
}

func (uc *NoAuthnUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	return nil
}

func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}

func (uc *NoAuthnUseCase) copySession() *auth.Token {
	c := *uc.session
	return &c
}
